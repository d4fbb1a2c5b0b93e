package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ccmarris/b1td-country-ip-blocking/internal/app"
	"github.com/ccmarris/b1td-country-ip-blocking/internal/b1client"
	"github.com/ccmarris/b1td-country-ip-blocking/internal/config"
	"github.com/ccmarris/b1td-country-ip-blocking/internal/domain/subnet"
	"github.com/ccmarris/b1td-country-ip-blocking/internal/logger"
	"github.com/ccmarris/b1td-country-ip-blocking/internal/outfile"
	"github.com/spf13/cobra"
)

type ctxKey string

const runtimeKey ctxKey = "runtime"

// runtime — собранные на старте зависимости команд.
// Клиент API создаётся явно и передаётся сервисам, без глобального состояния.
type runtime struct {
	cfg      *config.Config
	log      *logger.Logger
	logFile  *os.File // nil при выводе логов в stderr
	svc      *app.BlockListService
	attacher *app.PolicyAttacher
}

var (
	cfgFile string
	debug   bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "b1cblock",
		Short: "Country IP enforcement via BloxOne Threat Defense",
		Example: `	b1cblock subnets --countries GB,FR --output subnets.csv
	b1cblock rpz --countries GB --output rpz_import.csv
	b1cblock custom-list --countries GB --name country-block-gb --policy Default`,
		// Собираем конфиг, логгер, клиента и сервисы перед выполнением любой команды
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if debug {
				cfg.Logger.Level = "debug"
			}

			var (
				logg    *logger.Logger
				logFile *os.File
			)
			if cfg.Logger.File != "" {
				logFile, err = os.OpenFile(cfg.Logger.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				logg = logger.NewWithWriter(logFile, &cfg.Logger)
			} else {
				logg = logger.New(&cfg.Logger)
			}

			client, err := b1client.New(&cfg.API)
			if err != nil {
				return fmt.Errorf("init API client: %w", err)
			}

			partitioner := subnet.NewPartitioner(subnet.PolicyFromConfig(&cfg.CustomList))
			publisher := app.NewCollectionPublisher(client, logg)
			svc := app.NewBlockListService(client, partitioner, publisher, cfg.CustomList.MaxItems, logg)
			attacher := app.NewPolicyAttacher(client, logg)

			rt := &runtime{cfg: cfg, log: logg, logFile: logFile, svc: svc, attacher: attacher}
			cmd.SetContext(context.WithValue(cmd.Context(), runtimeKey, rt))

			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			rt := getRuntime(cmd)
			if rt == nil || rt.logFile == nil {
				return nil
			}
			return rt.logFile.Close()
		},
	}

	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to config file")
	root.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug messages")

	root.AddCommand(newSubnetsCmd())
	root.AddCommand(newRPZCmd())
	root.AddCommand(newCustomListCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func getRuntime(cmd *cobra.Command) *runtime {
	rt, _ := cmd.Context().Value(runtimeKey).(*runtime)
	return rt
}

// openOutput возвращает writer результата: файл (с бэкапом существующего)
// или stdout команды, если путь не задан.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}

	f, err := outfile.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

// lookupFailure сводит ошибки lookup в одну ошибку запуска.
// Частичный результат уже выведен, но код возврата должен отражать,
// что не вся запрошенная работа выполнена.
func lookupFailure(errs []error, total int) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d country lookups failed", len(errs), total)
}
