package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AustinHatem/crema-live/auth"
	"github.com/AustinHatem/crema-live/backend"
	"github.com/AustinHatem/crema-live/backend/fixture"
	"github.com/AustinHatem/crema-live/db"
	"github.com/AustinHatem/crema-live/middleware"
	"github.com/AustinHatem/crema-live/ui"
	"github.com/AustinHatem/crema-live/util"
	"github.com/AustinHatem/crema-live/web"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := makeApp().Run(ctx, os.Args); err != nil {
		log.Error("crema stopped", "err", err)
		os.Exit(1)
	}
}

type runtime struct {
	conf     *util.AppConfig
	provider backend.Provider
	store    *auth.Store
}

func (r *runtime) Close() {
	if err := r.store.Close(); err != nil {
		log.Warn("Closing session store", "err", err)
	}
	if err := r.provider.Close(); err != nil {
		log.Warn("Closing provider", "err", err)
	}
}

func setup(ctx context.Context, cmd *cli.Command) (*runtime, error) {
	conf, err := util.ReadConf(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	if cmd.Bool("fixtures") {
		conf.Conf.Fixtures = true
	}
	log.Debug("Configuration", "conf", util.PrettyPrint(conf))

	var p backend.Provider
	if conf.Conf.Fixtures {
		p = fixture.New()
	} else {
		database, err := db.Open(util.ResolveFilePath(conf.Conf.Database))
		if err != nil {
			return nil, err
		}
		p = database
		if cmd.Bool("seed") {
			if err := fixture.Seed(ctx, database); err != nil {
				database.Close()
				return nil, fmt.Errorf("seeding: %w", err)
			}
		}
	}
	log.Info("Provider ready", "provider", p.Name())

	store, err := auth.OpenStore(util.ResolveFilePath(conf.Conf.Sessions))
	if err != nil {
		p.Close()
		return nil, err
	}
	return &runtime{conf: conf, provider: p, store: store}, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	r, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer r.Close()
	conf := r.conf

	s, err := wish.NewServer(
		wish.WithAddress(fmt.Sprintf("%s:%d", conf.Conf.Host, conf.Conf.SshPort)),
		wish.WithHostKeyPath(util.ResolveFilePath("hostkey")),
		wish.WithPublicKeyAuth(publicKeyHandler),
		wish.WithMiddleware(
			middleware.MainTui(r.provider, r.store),
			middleware.AuthMiddleware(r.store),
			activeterm.Middleware(),
			logging.MiddlewareWithLogger(log.Default()), // last middleware executed first
		),
	)
	if err != nil {
		return err
	}

	errc := make(chan error, 2)
	go func() {
		log.Info("Starting SSH server", "host", conf.Conf.Host, "port", conf.Conf.SshPort)
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errc <- err
		}
	}()
	if conf.Conf.WithWeb {
		go func() {
			if err := web.Router(ctx, conf, r.provider); err != nil {
				errc <- err
			}
		}()
	}

	select {
	case err = <-errc:
	case <-ctx.Done():
	}

	log.Info("Stopping SSH server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if serr := s.Shutdown(shutdownCtx); serr != nil && err == nil {
		err = serr
	}
	return err
}

func local(ctx context.Context, cmd *cli.Command) error {
	r, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer r.Close()

	// log to a file so the alt screen stays clean
	logFile, err := os.OpenFile(util.ResolveFilePath("crema.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err == nil {
		log.SetOutput(logFile)
		defer logFile.Close()
	}

	session := auth.NewSession(r.provider, r.store, "local")
	defer session.Close()

	p := tea.NewProgram(ui.NewModel(r.provider, session, 0, 0),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithFilter(ui.QuitFilter),
	)
	final, err := p.Run()
	if m, ok := final.(ui.MainModel); ok {
		m.Close()
	}
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

func publicKeyHandler(ssh.Context, ssh.PublicKey) bool {
	return true
}
