package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"kucukaslan/necoport/config"
	"kucukaslan/necoport/domain"
	"kucukaslan/necoport/launcher"
	"kucukaslan/necoport/porter"
	"log"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"
)

const usage = `Usage:
  necoport run [service]             start one service from .necoport.yaml, or all of them
  necoport exec [-port name[=hint]]... <name> <command> [args...]
                                     run a command on ports reserved under name
  necoport list                      show current reservations
`

var errUsage = errors.New("invalid usage")

// portFlags collects repeated -port name[=hint] values
type portFlags map[string]domain.PortHint

func (p portFlags) String() string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

func (p portFlags) Set(value string) error {
	name, rawHint, hasHint := strings.Cut(value, "=")
	if name == "" {
		return fmt.Errorf("port name is required in %q", value)
	}
	var hint int
	if hasHint {
		h, err := strconv.Atoi(rawHint)
		if err != nil || h < 1 || h > 65535 {
			return fmt.Errorf("invalid hint in %q", value)
		}
		hint = h
	}
	p[name] = domain.PortHint{Hint: hint}
	return nil
}

func newLauncher(cfg *config.LauncherConfig) (*launcher.Launcher, *porter.Client) {
	client := porter.NewClient(cfg.Porter.URL, time.Duration(cfg.Porter.TimeoutSeconds)*time.Second)
	l := launcher.New(client,
		launcher.WithHeartbeat(time.Duration(cfg.Porter.HeartbeatSeconds)*time.Second),
		launcher.WithStopTimeout(time.Duration(cfg.StopTimeoutSeconds)*time.Second),
		launcher.WithStartGap(time.Duration(cfg.StartGapMillis)*time.Millisecond),
	)
	return l, client
}

func runCommand(ctx context.Context, l *launcher.Launcher, args []string) error {
	project, err := launcher.FindConfig(".")
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return l.RunAll(ctx, project)
	}
	if len(args) > 1 {
		return errUsage
	}

	svc, err := project.Service(args[0])
	if err != nil {
		return err
	}
	return l.Run(ctx, svc)
}

func execCommand(ctx context.Context, l *launcher.Launcher, args []string) error {
	ports := portFlags{}
	fs := flag.NewFlagSet("exec", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Var(ports, "port", "named port to reserve, as name or name=hint (repeatable)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	rest := fs.Args()
	if len(rest) < 2 {
		return errUsage
	}
	return l.Run(ctx, launcher.Service{
		Name:    rest[0],
		Command: strings.Join(rest[1:], " "),
		Ports:   ports,
	})
}

func listCommand(out io.Writer, client *porter.Client) error {
	entries, err := client.List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintf(out, "%s No reservations\n", domain.Cat(domain.MoodSleepy))
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPORTS\tPID\tALIVE")
	for _, e := range entries {
		reservation := domain.Reservation{Ports: e.Ports}
		ports := make([]string, 0, len(e.Ports))
		for _, name := range reservation.PortNames() {
			ports = append(ports, name+"="+strconv.Itoa(e.Ports[name]))
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%t\n", e.Name, strings.Join(ports, ","), e.PID, e.Alive)
	}
	return w.Flush()
}

func dispatch(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	l, client := newLauncher(config.LoadLauncher())
	switch args[0] {
	case "run":
		return runCommand(ctx, l, args[1:])
	case "exec":
		return execCommand(ctx, l, args[1:])
	case "list":
		return listCommand(out, client)
	default:
		return errUsage
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := dispatch(ctx, os.Args[1:], os.Stdout)
	if errors.Is(err, errUsage) {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("necoport: %v", err)
	}
}
