package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Iliyan-H-Iliev/LeaveOpsManager/config"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/dto"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/model"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/policy"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/repository"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/service"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/pkg/database"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/pkg/jwt"
	applogger "github.com/Iliyan-H-Iliev/LeaveOpsManager/pkg/logger"
)

// env holds what the database commands share.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
}

func (e *env) close() {
	if e.db != nil {
		if sqlDB, err := e.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	e.logger.Sync()
}

func openEnv(configPath string) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, db: db}, nil
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "leaveopsctl",
		Short:         "LeaveOps maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./config/config.yaml)")

	root.AddCommand(
		newMigrateCmd(&configPath),
		newGenerateShiftsCmd(&configPath),
		newPermissionsCmd(),
	)
	return root
}

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Bring the database schema up to date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(*configPath)
			if err != nil {
				return err
			}
			defer e.close()

			if err := database.Migrate(e.db, e.cfg.Database.Driver, e.logger, model.All()...); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func newGenerateShiftsCmd(configPath *string) *cobra.Command {
	var patternID string

	cmd := &cobra.Command{
		Use:   "generate-shifts",
		Short: "Fill shift assignments up to the horizon for every pattern",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(*configPath)
			if err != nil {
				return err
			}
			defer e.close()

			svc := service.NewService(e.cfg, repository.NewRepository(e.db), jwt.NewManager(&e.cfg.Auth), nil, e.logger)
			results, err := svc.Shift.GenerateAll(cmd.Context(), patternID)
			printGenerated(cmd.OutOrStdout(), results)
			return err
		},
	}
	cmd.Flags().StringVar(&patternID, "pattern", "", "only this pattern id")
	return cmd
}

func newPermissionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "permissions",
		Short: "Print the permissions of every user type",
		Run: func(cmd *cobra.Command, _ []string) {
			printMatrix(cmd.OutOrStdout(), policy.Matrix())
		},
	}
}

func printMatrix(w io.Writer, matrix map[string][]string) {
	for _, ut := range model.UserTypes {
		fmt.Fprintf(w, "%-9s %s\n", ut, strings.Join(matrix[ut], ", "))
	}
}

func printGenerated(w io.Writer, results []dto.GenerateResponse) {
	var total int64
	for _, r := range results {
		fmt.Fprintf(w, "%s  %s..%s  expanded=%d inserted=%d\n", r.PatternID, r.From, r.To, r.Expanded, r.Inserted)
		total += r.Inserted
	}
	fmt.Fprintf(w, "%d pattern(s), %d new assignment(s)\n", len(results), total)
}
