package plan

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	jetson "github.com/jetsonhacks/install-deep-stream"
	"github.com/jetsonhacks/install-deep-stream/exec"
	"github.com/jetsonhacks/install-deep-stream/log"
	"github.com/jetsonhacks/install-deep-stream/sequence"
)

var ultralyticsPrerequisites = []string{
	"python3-pip",
	"libopenmpi-dev",
	"libopenblas-base",
	"libomp-dev",
	"libjpeg-dev",
	"zlib1g-dev",
}

// CUDA-enabled wheels built for the Jetson. Stock PyPI wheels are CPU only
// on aarch64, so these are installed on top of the ultralytics install.
var jetsonWheels = map[int][]string{
	6: {
		"https://github.com/ultralytics/assets/releases/download/v0.0.0/torch-2.5.0a0+872d972e41.nv24.08-cp310-cp310-linux_aarch64.whl",
		"https://github.com/ultralytics/assets/releases/download/v0.0.0/torchvision-0.20.0a0+afc54f7-cp310-cp310-linux_aarch64.whl",
		"https://github.com/ultralytics/assets/releases/download/v0.0.0/onnxruntime_gpu-1.20.0-cp310-cp310-linux_aarch64.whl",
	},
	5: {
		"https://developer.download.nvidia.com/compute/redist/jp/v512/pytorch/torch-2.1.0a0+41361538.nv23.06-cp38-cp38-linux_aarch64.whl",
		"https://github.com/ultralytics/assets/releases/download/v0.0.0/torchvision-0.16.2+c6f3977-cp38-cp38-linux_aarch64.whl",
		"https://github.com/ultralytics/assets/releases/download/v0.0.0/onnxruntime_gpu-1.15.1-cp38-cp38-linux_aarch64.whl",
	},
}

// cudaProfile makes the CUDA toolchain visible to every session. Written
// once, a reboot picks it up system-wide.
const (
	cudaProfilePath = "/etc/profile.d/cuda.sh"
	cudaProfile     = `export PATH=/usr/local/cuda/bin${PATH:+:${PATH}}
export LD_LIBRARY_PATH=/usr/local/cuda/lib64${LD_LIBRARY_PATH:+:${LD_LIBRARY_PATH}}
`
)

func init() {
	register(&Plan{
		Name:        "ultralytics",
		Description: "Install Ultralytics YOLO with CUDA-enabled PyTorch",
		Steps:       ultralyticsSteps,
	})
}

func ultralyticsSteps(h *jetson.Host) []sequence.Step {
	return []sequence.Step{
		checkPlatform(h),
		aptUpdate(h),
		{
			ID: "install-prerequisites",
			Action: func(ctx context.Context) error {
				return h.PackageManager().Install(ctx, ultralyticsPrerequisites...)
			},
		},
		{
			ID: "pip-install-ultralytics",
			Action: func(ctx context.Context) error {
				return hostPip(ctx, h).Install(ctx, "ultralytics")
			},
		},
		{
			ID: "download-cuda-wheels",
			Action: func(ctx context.Context) error {
				wheels, err := wheelsFor(ctx, h)
				if err != nil {
					return err
				}
				for _, url := range wheels {
					if err := h.Fetcher().Fetch(ctx, url, filepath.Join(h.Config().DownloadDir, wheelFileName(url))); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			ID: "install-cuda-wheels",
			Action: func(ctx context.Context) error {
				wheels, err := wheelsFor(ctx, h)
				if err != nil {
					return err
				}
				paths := make([]string, 0, len(wheels))
				for _, url := range wheels {
					paths = append(paths, filepath.Join(h.Config().DownloadDir, wheelFileName(url)))
				}
				return hostPip(ctx, h).InstallLocal(ctx, paths...)
			},
		},
		{
			ID:             "configure-cuda-paths",
			RequiresReboot: true,
			Action: func(ctx context.Context) error {
				if err := h.Sudo().ExecContext(ctx, "tee "+cudaProfilePath+" > /dev/null", exec.StdinString(cudaProfile)); err != nil {
					return fmt.Errorf("write %s: %w", cudaProfilePath, err)
				}
				if err := h.Sudo().ExecContext(ctx, "ldconfig"); err != nil {
					return fmt.Errorf("refresh linker cache: %w", err)
				}
				return nil
			},
		},
		{
			ID: "verify-ultralytics",
			Action: func(ctx context.Context) error {
				out, err := h.Runner().ExecOutputContext(ctx,
					`python3 -c 'import torch, ultralytics; print(ultralytics.__version__, torch.__version__, torch.cuda.is_available())'`)
				if err != nil {
					return fmt.Errorf("ultralytics import failed: %w", err)
				}
				h.Log().Info("ultralytics installed", log.KeyVersion, out)
				if strings.HasSuffix(out, "False") {
					h.Log().Warn("torch reports CUDA unavailable")
				}
				return nil
			},
		},
	}
}

func wheelsFor(ctx context.Context, h *jetson.Host) ([]string, error) {
	j, err := h.Jetson(ctx)
	if err != nil {
		return nil, err
	}
	wheels, ok := jetsonWheels[j.JetPack]
	if !ok {
		return nil, fmt.Errorf("no cuda wheels known for JetPack %d", j.JetPack)
	}
	return wheels, nil
}

// wheelFileName returns the pip-compatible file name of a wheel URL. Pip
// refuses wheels whose file name does not match their metadata, so the URL's
// base name is kept as is.
func wheelFileName(url string) string {
	return filepath.Base(url)
}
