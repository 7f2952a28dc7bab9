// Package jetson bundles the collaborators of the installer behind a Host
// that installation plans run against: command execution, privilege
// elevation, package managers, the init system, downloads, the run state
// store and the resume trigger.
package jetson

import (
	"context"
	"fmt"

	"github.com/jetsonhacks/install-deep-stream/download"
	"github.com/jetsonhacks/install-deep-stream/exec"
	"github.com/jetsonhacks/install-deep-stream/initsystem"
	"github.com/jetsonhacks/install-deep-stream/log"
	"github.com/jetsonhacks/install-deep-stream/osrelease"
	"github.com/jetsonhacks/install-deep-stream/packagemanager"
	"github.com/jetsonhacks/install-deep-stream/protocol"
	"github.com/jetsonhacks/install-deep-stream/protocol/localhost"
	"github.com/jetsonhacks/install-deep-stream/sequence"
	"github.com/jetsonhacks/install-deep-stream/state"
	"github.com/jetsonhacks/install-deep-stream/sudo"
	"github.com/jetsonhacks/install-deep-stream/trigger"
)

// Host is the machine the installer operates on. Zero or more Options adjust
// how it is built; the defaults run commands on localhost and store state at
// the standard paths.
//
// Connect must be called before the accessors that need privileges; it
// performs the fail-fast privilege check instead of re-executing the process
// with elevated rights.
type Host struct {
	log.LoggerInjectable

	config     *Config
	connection protocol.Connection
	runner     exec.Runner
	sudoSvc    *sudo.Service
	fetcher    *download.Fetcher
	store      state.Store
	rebooter   sequence.Rebooter

	sudoProviderOverride sudo.SudoProvider

	// set by Connect
	privileged exec.Runner
	pkgmans    *packagemanager.Service
	initsys    initsystem.ServiceManager
	trig       trigger.Trigger
}

// Option is a functional option for NewHost.
type Option func(*Host)

// WithConnection sets the connection commands are run on.
func WithConnection(conn protocol.Connection) Option {
	return func(h *Host) {
		h.connection = conn
	}
}

// WithRunner sets the runner, bypassing the default executor over the
// connection.
func WithRunner(runner exec.Runner) Option {
	return func(h *Host) {
		h.runner = runner
	}
}

// WithSudoProvider sets the provider used to find a privilege elevation
// method.
func WithSudoProvider(provider sudo.SudoProvider) Option {
	return func(h *Host) {
		h.sudoSvc = nil
		h.sudoProviderOverride = provider
	}
}

// WithFetcher sets the downloader.
func WithFetcher(fetcher *download.Fetcher) Option {
	return func(h *Host) {
		h.fetcher = fetcher
	}
}

// WithStore sets the run state store.
func WithStore(store state.Store) Option {
	return func(h *Host) {
		h.store = store
	}
}

// WithTrigger sets the resume trigger implementation.
func WithTrigger(trig trigger.Trigger) Option {
	return func(h *Host) {
		h.trig = trig
	}
}

// WithRebooter sets the rebooter.
func WithRebooter(rebooter sequence.Rebooter) Option {
	return func(h *Host) {
		h.rebooter = rebooter
	}
}

// WithLogger sets the logger for the host and its collaborators.
func WithLogger(logger log.Logger) Option {
	return func(h *Host) {
		h.SetLogger(logger)
	}
}

// NewHost builds a Host from the config with the given options applied.
func NewHost(config *Config, opts ...Option) (*Host, error) {
	if config == nil {
		c, err := DefaultConfig()
		if err != nil {
			return nil, err
		}
		config = c
	}
	h := &Host{config: config}
	for _, opt := range opts {
		opt(h)
	}

	if h.runner == nil {
		if h.connection == nil {
			conn, err := localhost.NewConnection()
			if err != nil {
				return nil, fmt.Errorf("create localhost connection: %w", err)
			}
			h.connection = conn
		}
		h.runner = exec.NewExecutor(h.connection)
	}
	log.InjectLogger(h.Log(), h.runner)

	if h.sudoSvc == nil {
		provider := sudo.SudoProvider(sudo.DefaultProvider)
		if h.sudoProviderOverride != nil {
			provider = h.sudoProviderOverride
		}
		h.sudoSvc = sudo.NewSudoService(provider, h.runner)
	}
	if h.fetcher == nil {
		h.fetcher = download.NewFetcher(download.WithMaxRetries(config.DownloadRetries))
	}
	log.InjectLogger(h.Log(), h.fetcher)
	if h.store == nil {
		store, err := state.NewFileStore(config.StatePath)
		if err != nil {
			return nil, err
		}
		log.InjectLogger(h.Log(), store)
		h.store = store
	}
	return h, nil
}

// Connect performs the privilege check and detects the host's package
// manager and init system. It fails fast with an error wrapping
// sudo.ErrNoSudo when the current user has no way to run privileged
// commands.
func (h *Host) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	privileged, err := h.sudoSvc.GetSudoRunner()
	if err != nil {
		return fmt.Errorf("privilege check: %w", err)
	}
	h.privileged = privileged
	log.InjectLogger(h.Log(), h.privileged)

	h.pkgmans = packagemanager.NewPackageManagerService(packagemanager.DefaultProvider(), h.privileged)

	initsys, err := initsystem.NewInitSystemService(initsystem.DefaultProvider(), h.privileged).GetServiceManager()
	if err != nil {
		return fmt.Errorf("detect init system: %w", err)
	}
	h.initsys = initsys

	if h.trig == nil {
		trig := trigger.NewSystemd(h.privileged, h.initsys, h.config.ExecPath, h.config.Source)
		log.InjectLogger(h.Log(), trig)
		h.trig = trig
	}
	if h.rebooter == nil {
		h.rebooter = sequence.SystemdRebooter{Runner: h.privileged}
	}
	return nil
}

// Config returns the host's configuration.
func (h *Host) Config() *Config {
	return h.config
}

// Runner returns the unprivileged runner.
func (h *Host) Runner() exec.Runner {
	return h.runner
}

// Sudo returns the privileged runner. Before a successful Connect an error
// executor is returned that fails every operation.
func (h *Host) Sudo() exec.Runner {
	if h.privileged == nil {
		return exec.NewErrorExecutor(fmt.Errorf("host not connected: %w", sudo.ErrNoSudo))
	}
	return h.privileged
}

// PackageManager returns the detected package manager. Detection failure
// surfaces as an error on every operation of the returned manager.
func (h *Host) PackageManager() packagemanager.PackageManager {
	if h.pkgmans == nil {
		return &packagemanager.NullPackageManager{Err: packagemanager.ErrNoPackageManager}
	}
	return h.pkgmans.PackageManager()
}

// Pip returns a pip frontend running through the privileged runner.
func (h *Host) Pip(opts ...packagemanager.PipOption) *packagemanager.Pip {
	return packagemanager.NewPip(h.Sudo(), opts...)
}

// ServiceManager returns the detected init system manager.
func (h *Host) ServiceManager() initsystem.ServiceManager {
	return h.initsys
}

// Fetcher returns the downloader.
func (h *Host) Fetcher() *download.Fetcher {
	return h.fetcher
}

// Store returns the run state store.
func (h *Host) Store() state.Store {
	return h.store
}

// Trigger returns the resume trigger.
func (h *Host) Trigger() trigger.Trigger {
	return h.trig
}

// OSRelease resolves the host's os-release information.
func (h *Host) OSRelease(ctx context.Context) (*osrelease.OSRelease, error) {
	return osrelease.Resolve(ctx, h.runner)
}

// Jetson resolves the Jetson platform details of the host.
func (h *Host) Jetson(ctx context.Context) (*osrelease.Jetson, error) {
	return osrelease.ResolveJetson(ctx, h.runner)
}

// Sequencer builds a sequencer for the named plan using the host's store,
// trigger and rebooter.
func (h *Host) Sequencer(plan string, steps []sequence.Step) (*sequence.Sequencer, error) {
	seq, err := sequence.New(plan, steps, h.store, h.trig, h.rebooter)
	if err != nil {
		return nil, err
	}
	log.InjectLogger(h.Log(), seq)
	return seq, nil
}
