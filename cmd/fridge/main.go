package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/term"

	"github.com/naveenspark/fridge/internal/config"
	"github.com/naveenspark/fridge/internal/kvstore"
	"github.com/naveenspark/fridge/internal/logging"
	"github.com/naveenspark/fridge/internal/metrics"
	"github.com/naveenspark/fridge/internal/scan"
	"github.com/naveenspark/fridge/internal/session"
	"github.com/naveenspark/fridge/internal/tui"
	"github.com/naveenspark/fridge/pkg/client"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Getenv, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, getenv func(string) string, stdin io.Reader, stdout io.Writer) error {
	// -v and --version would otherwise be rejected as unknown flags.
	if len(args) > 0 && (args[0] == "-v" || args[0] == "--version") {
		args = append([]string{"version"}, args[1:]...)
	}

	cfg, rest, err := config.Load(args, getenv)
	if errors.Is(err, flag.ErrHelp) {
		printHelp(stdout)
		return nil
	}
	if err != nil {
		return err
	}

	cmd := ""
	if len(rest) > 0 {
		cmd, rest = rest[0], rest[1:]
	}
	switch cmd {
	case "version":
		fmt.Fprintln(stdout, "fridge "+version)
		return nil
	case "help":
		printHelp(stdout)
		return nil
	case "", "login", "register", "logout", "scan":
	default:
		return fmt.Errorf("unknown command %q, see: fridge help", cmd)
	}

	e, err := openEnv(ctx, cfg)
	if err != nil {
		return err
	}
	defer e.Close()

	if cmd == "" {
		return runTUI(e)
	}

	// The TUI reads the session itself, behind its loading screen.
	e.session.Initialize(ctx)
	switch cmd {
	case "login", "register":
		return runAuth(ctx, e, cmd == "register", stdin, stdout)
	case "logout":
		return runLogout(ctx, e, stdout)
	case "scan":
		return runScan(ctx, e, rest, stdout)
	}
	return nil
}

// env is everything a command needs: persisted session, API client and
// observability, built from the resolved configuration.
type env struct {
	cfg     config.Config
	logger  *logging.SlogLogger
	store   *kvstore.SQLiteStore
	session *session.Manager
	api     *client.Client
	metrics *metrics.Collector

	cancel  context.CancelFunc
	closers []io.Closer
}

func openEnv(ctx context.Context, cfg config.Config) (*env, error) {
	if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
		return nil, fmt.Errorf("create %s: %w", cfg.Home, err)
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger, logFile, err := logging.NewFile(cfg.LogPath(), level)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, logger: logger, closers: []io.Closer{logFile}}

	store, err := kvstore.Open(ctx, cfg.StatePath())
	if err != nil {
		e.Close()
		return nil, err
	}
	e.store = store
	e.closers = append([]io.Closer{store}, e.closers...)

	reg := prometheus.NewRegistry()
	e.metrics = metrics.NewCollector(reg)
	var bg context.Context
	bg, e.cancel = context.WithCancel(ctx)
	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(bg, cfg.MetricsAddr, reg); err != nil {
				logger.Error(bg, "metrics server stopped", "addr", cfg.MetricsAddr, "error", err)
			}
		}()
	}

	var rt http.RoundTripper = metrics.NewTransport(http.DefaultTransport, e.metrics)
	if cfg.HTTPDebug {
		rt = client.NewLoggingTransport(rt, logger)
	}
	opts := []client.Option{
		client.WithTimeout(cfg.HTTPTimeout),
		client.WithTransport(rt),
		client.WithConnectPath(cfg.ConnectPath),
	}

	// The session needs an unauthenticated client for the credential
	// exchange; every other call reads the token from the session.
	e.session = session.NewManager(store, client.New(cfg.APIURL, nil, opts...), logger)
	e.api = client.New(cfg.APIURL, e.session, opts...)

	logger.Debug(ctx, "environment ready", "api", cfg.APIURL, "home", cfg.Home, "metrics", cfg.MetricsAddr)
	return e, nil
}

func (e *env) Close() {
	if e.cancel != nil {
		e.cancel()
	}
	for _, c := range e.closers {
		c.Close() //nolint:errcheck // best-effort on exit
	}
}

func runTUI(e *env) error {
	app := tui.NewApp(e.session, e.api, e.metrics)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func runAuth(ctx context.Context, e *env, register bool, stdin io.Reader, stdout io.Writer) error {
	r := bufio.NewReader(stdin)
	fmt.Fprint(stdout, "login: ")
	login, err := readLine(r)
	if err != nil {
		return fmt.Errorf("read login: %w", err)
	}
	fmt.Fprint(stdout, "password: ")
	password, err := readSecret(r, stdin)
	fmt.Fprintln(stdout)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	authenticate := e.session.Login
	if register {
		authenticate = e.session.Register
	}
	if _, err := authenticate(ctx, strings.TrimSpace(login), password); err != nil {
		return err
	}

	st := e.session.Snapshot()
	fmt.Fprintf(stdout, "Logged in as %s\n", st.User)
	if exp, ok := e.session.TokenExpiry(); ok {
		fmt.Fprintf(stdout, "Session valid until %s\n", exp.Local().Format(time.DateTime))
	}
	return nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readSecret reads without echo when stdin is a terminal.
func readSecret(r *bufio.Reader, stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		return string(b), err
	}
	return readLine(r)
}

func runLogout(ctx context.Context, e *env, stdout io.Writer) error {
	if !e.session.Snapshot().Authenticated() {
		fmt.Fprintln(stdout, "Already logged out.")
		return nil
	}
	if err := e.session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "Logged out.")
	return nil
}

func runScan(ctx context.Context, e *env, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	symbology := fs.String("type", "", "barcode symbology, inferred from the code when empty")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	if fs.NArg() != 1 {
		return errors.New("usage: fridge scan [-type T] CODE")
	}
	if !e.session.Snapshot().Authenticated() {
		return errors.New("not logged in, run: fridge login")
	}

	code := strings.TrimSpace(fs.Arg(0))
	r := scan.Result{Data: code, Type: *symbology}
	if r.Type == "" {
		r.Type = scan.Classify(code)
	}

	var p scan.Pipeline
	if err := p.Open(); err != nil {
		return err
	}
	if p.Decode(r) != scan.Accepted {
		e.metrics.RecordScan("rejected")
		return fmt.Errorf("unsupported barcode type %q, expected EAN-13 or EAN-8", r.Type)
	}
	e.metrics.RecordScan("accepted")

	msg, err := p.Submit(ctx, e.api)
	if err != nil {
		e.metrics.RecordScan("failed")
		e.logger.Warn(ctx, "scan submit failed", "code", code, "error", err)
		return errors.New(client.ErrorMessage(err))
	}
	e.metrics.RecordScan("submitted")
	e.logger.Info(ctx, "scan submitted", "code", code, "type", r.Type)
	fmt.Fprintf(stdout, "%s: %s\n", code, msg)
	return nil
}
