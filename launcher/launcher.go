// Package launcher starts dev servers on ports leased from necoportd.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"kucukaslan/necoport/domain"
	"kucukaslan/necoport/porter"
	"log"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

var ErrEmptyCommand = errors.New("service has no command")

// Service is a command to run under a reservation named Name
type Service struct {
	Name    string
	Command string
	Dir     string // empty runs in the current directory
	Ports   map[string]domain.PortHint
	Env     map[string]string
}

// Launcher reserves ports for child processes and releases them when the child exits
type Launcher struct {
	client      *porter.Client
	heartbeat   time.Duration
	stopTimeout time.Duration
	startGap    time.Duration
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer
}

type Option func(*Launcher)

// WithHeartbeat sets how often a running child's lease is renewed.
func WithHeartbeat(interval time.Duration) Option {
	return func(l *Launcher) { l.heartbeat = interval }
}

// WithStopTimeout sets how long a child gets between SIGTERM and SIGKILL.
func WithStopTimeout(timeout time.Duration) Option {
	return func(l *Launcher) { l.stopTimeout = timeout }
}

// WithStartGap sets the pause between services started by RunAll.
func WithStartGap(gap time.Duration) Option {
	return func(l *Launcher) { l.startGap = gap }
}

// WithOutput redirects the children's stdout and stderr.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(l *Launcher) {
		l.stdout = stdout
		l.stderr = stderr
	}
}

func New(client *porter.Client, opts ...Option) *Launcher {
	l := &Launcher{
		client:      client,
		heartbeat:   5 * time.Minute,
		stopTimeout: 5 * time.Second,
		startGap:    time.Second,
		stdin:       os.Stdin,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run reserves ports for svc, runs its command with PORT set and releases the
// reservation once the command exits. Cancelling ctx stops the child.
func (l *Launcher) Run(ctx context.Context, svc Service) error {
	args := strings.Fields(svc.Command)
	if len(args) == 0 {
		return fmt.Errorf("%s: %w", svc.Name, ErrEmptyCommand)
	}

	ports, env := svc.Ports, svc.Env
	if profile, ok := DetectProfile(svc.Command); ok && len(ports) == 0 {
		log.Printf("Launcher: detected %s for %s", profile.Description, svc.Name)
		ports = profile.Ports
		env = mergeEnv(profile.Env, svc.Env)
	}

	request := domain.ReserveRequest{Name: svc.Name}
	if len(ports) > 0 {
		request.Ports = ports
	}

	reg, err := porter.Acquire(ctx, l.client, request, l.heartbeat)
	if err != nil {
		return fmt.Errorf("%s: reserve: %w", svc.Name, err)
	}
	reserved := reg.Ports()
	log.Printf("Launcher: %s starting %q on %v", domain.CatForPort(reg.Port()), svc.Name, reserved)

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = svc.Dir
	cmd.Env = serviceEnv(os.Environ(), env, reserved)
	cmd.Stdin = l.stdin
	cmd.Stdout = l.stdout
	cmd.Stderr = l.stderr
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = l.stopTimeout

	runErr := cmd.Run()
	switch {
	case ctx.Err() != nil:
		log.Printf("Launcher: %s stopped", svc.Name)
		runErr = nil
	case runErr != nil:
		runErr = fmt.Errorf("%s: %w", svc.Name, runErr)
	default:
		log.Printf("Launcher: %s exited", svc.Name)
	}

	return errors.Join(runErr, reg.Close())
}

// RunAll starts every service of cfg in file order, startGap apart, and waits for
// all of them. A service that fails does not stop the others.
func (l *Launcher) RunAll(ctx context.Context, cfg *ProjectConfig) error {
	names := cfg.ServiceNames()
	if len(names) == 0 {
		return fmt.Errorf("no services defined in %s", ConfigFileName)
	}

	var g errgroup.Group
	for i, name := range names {
		if i > 0 {
			select {
			case <-ctx.Done():
				return errors.Join(ctx.Err(), g.Wait())
			case <-time.After(l.startGap):
			}
		}

		svc, err := cfg.Service(name)
		if err != nil {
			return errors.Join(err, g.Wait())
		}
		g.Go(func() error {
			if err := l.Run(ctx, svc); err != nil {
				log.Printf("Launcher: %v", err)
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

func mergeEnv(base, override map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

// serviceEnv layers extra and the reserved ports over base. PORT is the main port;
// every other name is exported as PORT_<NAME>.
func serviceEnv(base []string, extra map[string]string, ports map[string]int) []string {
	env := append([]string(nil), base...)

	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+extra[k])
	}

	reservation := domain.Reservation{Ports: ports}
	env = append(env, "PORT="+strconv.Itoa(reservation.MainPort()))
	for _, name := range reservation.PortNames() {
		if name == domain.DefaultPortName {
			continue
		}
		env = append(env, "PORT_"+strings.ToUpper(name)+"="+strconv.Itoa(ports[name]))
	}
	return env
}
