package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/web"
)

func serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gin.SetMode(cfg.GinMode)

	st, db, err := openStore(ctx, cfg.AutoMigrate)
	if err != nil {
		return err
	}
	defer db.Close()

	intake := contact.NewService(st, newMailer(cfg, logger), contact.Options{
		Recipient: cfg.ContactToEmail,
		From:      cfg.FromEmail(),
	}, logger)
	if cfg.ContactToEmail == "" {
		logger.Info("PORTFOLIO_CONTACT_TO_EMAIL not set, contact emails disabled")
	}

	admin, err := web.NewAdmin(st, web.AdminOptions{
		Username:  cfg.AdminUsername,
		Password:  cfg.AdminPassword,
		Retention: cfg.VisitorRetention,
	}, logger)
	if err != nil {
		return err
	}
	if _, err := admin.Purge(ctx); err != nil {
		logger.Warn("Visitor cleanup failed", zap.Error(err))
	}

	pages := web.NewComposer(st, content.NewSkillGrouper(st.Schema()), content.NewMarkdown(), cfg.HomeProjectLimit)
	router, err := web.NewRouter(web.Deps{
		Pages:     pages,
		Intake:    intake,
		Admin:     admin,
		StaticDir: cfg.StaticDir,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr), zap.String("mode", cfg.GinMode))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}
	return nil
}

func newMailer(cfg *config.Config, logger *zap.Logger) contact.Mailer {
	if cfg.EmailBackend == "console" {
		return contact.NewLogMailer(logger)
	}
	return contact.NewSMTPMailer(contact.SMTPConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
	})
}
