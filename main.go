package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/usjp/campus-panel/config"
	"github.com/usjp/campus-panel/database"
	"github.com/usjp/campus-panel/logger"
	"github.com/usjp/campus-panel/util/common"
	"github.com/usjp/campus-panel/web"
	"github.com/usjp/campus-panel/web/service"
)

func loadConfig() *config.Config {
	cfg, err := config.Load(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

func initLogger(cfg *config.Config) {
	level, err := logger.ParseLevel(string(cfg.LogLevel))
	if err != nil {
		log.Fatal(common.NewErrorf("unknown log level: %s", cfg.LogLevel))
	}
	logger.InitLogger(level, cfg.LogFolder)
}

func runWebServer() {
	log.Printf("%v %v", config.GetName(), config.GetVersion())

	cfg := loadConfig()
	initLogger(cfg)

	err := database.InitDB(&cfg.Database, cfg.Debug)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := database.CloseDB(); err != nil {
			logger.Warning("close db err:", err)
		}
	}()

	server := web.NewServer(cfg, database.GetDB())
	err = server.Start()
	if err != nil {
		log.Println(err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	// Trap shutdown signals
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, os.Interrupt)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			logger.Info("Received SIGHUP, restarting web server...")
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			cfg = loadConfig()
			server = web.NewServer(cfg, database.GetDB())
			if err := server.Start(); err != nil {
				log.Println(err)
				return
			}
		default:
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			return
		}
	}
}

func migrateDb() {
	cfg := loadConfig()
	fmt.Println("Start migrating database...")
	if err := database.InitDB(&cfg.Database, cfg.Debug); err != nil {
		log.Fatal(err)
	}
	if err := database.CloseDB(); err != nil {
		fmt.Println("close database failed:", err)
	}
	fmt.Println("Migration done!")
}

func createAdmin(form service.AccountForm) {
	cfg := loadConfig()
	if err := database.InitDB(&cfg.Database, cfg.Debug); err != nil {
		fmt.Println(err)
		return
	}
	defer database.CloseDB()

	credentials := service.NewCredentialService()
	provision := service.NewProvisionService(credentials, service.NewProfileService())
	user, err := provision.CreateAdmin(form)
	if err != nil {
		fmt.Println("create admin failed:", service.MessageKey(err), err)
		return
	}
	fmt.Printf("admin %s created (id %d)\n", user.Username, user.Id)
}

func showSetting() {
	cfg := loadConfig()
	secret := "not set"
	if cfg.Session.Secret != "" {
		secret = "set"
	}
	fmt.Println("current panel settings as follows:")
	fmt.Println("listen:", cfg.Listen)
	fmt.Println("port:", cfg.Port)
	fmt.Println("base path:", cfg.NormalizedBasePath())
	fmt.Println("tls:", cfg.CertFile != "" && cfg.KeyFile != "")
	fmt.Println("database:", cfg.Database.Type)
	if cfg.Database.Type == config.DatabaseTypeSQLite {
		fmt.Println("database path:", cfg.Database.SQLite.Path)
	} else {
		fmt.Printf("database host: %s:%d/%s\n", cfg.Database.Postgres.Host, cfg.Database.Postgres.Port, cfg.Database.Postgres.Database)
	}
	fmt.Println("session store:", cfg.Session.Store)
	fmt.Println("session secret:", secret)
	fmt.Println("session max age (minutes):", cfg.Session.MaxAge)
	fmt.Println("login rate per minute:", cfg.LoginRatePerMinute)
	fmt.Println("audit retention days:", cfg.AuditRetentionDays)
	fmt.Println("metrics:", cfg.MetricsEnable)
}

func main() {
	var rootCmd = &cobra.Command{
		Use: "campus-panel",
	}

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the web server",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	var migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Run: func(cmd *cobra.Command, args []string) {
			migrateDb()
		},
	}

	var adminCmd = &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts",
	}

	var adminCreateCmd = &cobra.Command{
		Use:   "create",
		Short: "Create an admin account",
		Run: func(cmd *cobra.Command, args []string) {
			username, _ := cmd.Flags().GetString("username")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			phone, _ := cmd.Flags().GetString("phone")
			createAdmin(service.AccountForm{
				Username: username,
				Email:    email,
				Password: password,
				Phone:    phone,
			})
		},
	}

	adminCreateCmd.Flags().String("username", "", "admin username")
	adminCreateCmd.Flags().String("email", "", "admin email")
	adminCreateCmd.Flags().String("password", "", "admin password")
	adminCreateCmd.Flags().String("phone", "", "admin phone number")
	_ = adminCreateCmd.MarkFlagRequired("username")
	_ = adminCreateCmd.MarkFlagRequired("email")
	_ = adminCreateCmd.MarkFlagRequired("password")

	var settingCmd = &cobra.Command{
		Use:   "setting",
		Short: "Inspect settings",
	}

	var showCmd = &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		Run: func(cmd *cobra.Command, args []string) {
			showSetting()
		},
	}

	adminCmd.AddCommand(adminCreateCmd)
	settingCmd.AddCommand(showCmd)
	rootCmd.AddCommand(runCmd, migrateCmd, adminCmd, settingCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
