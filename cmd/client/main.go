package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/dmitrijs2005/payslips/internal/client/biometric"
	"github.com/dmitrijs2005/payslips/internal/client/cli"
	"github.com/dmitrijs2005/payslips/internal/client/client"
	"github.com/dmitrijs2005/payslips/internal/client/config"
	"github.com/dmitrijs2005/payslips/internal/client/push"
	"github.com/dmitrijs2005/payslips/internal/client/receipts"
	"github.com/dmitrijs2005/payslips/internal/client/securestore"
	"github.com/dmitrijs2005/payslips/internal/client/session"
	"github.com/dmitrijs2005/payslips/internal/client/share"
	"github.com/dmitrijs2005/payslips/internal/logging"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	if err := run(ctx, cfg); err != nil {
		log.Fatalf("%v", err)
	}

}

func run(ctx context.Context, cfg *config.Config) error {
	logger := logging.NewTextLogger(os.Stderr, cfg.LogLevel)

	db, err := client.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return err
	}
	defer db.Close()

	secret := []byte(cfg.DeviceSecret)
	if len(secret) == 0 {
		secret, err = securestore.LoadOrCreateDeviceSecret(cfg.DeviceSecretFile)
		if err != nil {
			return err
		}
	}

	api, err := client.NewHTTPClient(cfg.APIBaseURL, cfg.RequestTimeout)
	if err != nil {
		return err
	}
	defer api.Close()

	pin := biometric.NewPINCapability(db, os.Stdout)
	installation := push.NewInstallation(db)

	manager := session.NewManager(ctx, session.Deps{
		Client:      api,
		Credentials: securestore.NewSQLiteCredentialStore(db, secret),
		Profiles:    securestore.NewSQLiteProfileStore(db),
		Biometrics:  pin,
		Push:        installation,
		Logger:      logger.With("component", "session"),
	}, session.WithPushTimeout(cfg.PushRegistrationTimeout))
	defer manager.Wait()

	var sharer share.Service
	if cfg.ShareEnabled() {
		sharer = share.NewS3Service(share.Config{
			Bucket:    cfg.ShareBucket,
			Region:    cfg.ShareRegion,
			Endpoint:  cfg.ShareEndpoint,
			AccessKey: cfg.ShareAccessKey,
			SecretKey: cfg.ShareSecretKey,
			LinkTTL:   cfg.ShareLinkTTL,
		}, &http.Client{Timeout: cfg.RequestTimeout}, logger.With("component", "share"))
	}

	app := cli.NewApp(cli.Deps{
		Config:   cfg,
		Sessions: manager,
		Receipts: receipts.NewService(api, manager, cfg.ReceiptType, cfg.DownloadDir, logger),
		Share:    sharer,
		PIN:      pin,
		Push:     installation,
		Pinger:   api,
		Logger:   logger,
		In:       os.Stdin,
		Out:      os.Stdout,
	})
	app.Run(ctx)
	return nil
}
