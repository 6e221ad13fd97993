package gputune

import (
	"os"

	"github.com/spf13/cobra"

	"GPUTune/internal/util"
)

var (
	FlagConfigFilePath string

	FlagInterval   string
	FlagIterations uint64

	FlagGpuIndex    int
	FlagCoreClock   int
	FlagMemoryClock int
	FlagPowerLimit  int
	FlagFanCurve    string

	rootCmd = &cobra.Command{
		Use:   "gputune",
		Short: "monitor and tune NVIDIA GPU operating points",
		Long:  "",
	}

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "periodically refresh and display GPU telemetry",
		Run: func(cmd *cobra.Command, args []string) {
			if err := Watch(); err != util.ErrorSuccess {
				os.Exit(err)
			}
		},
	}

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "list detected GPU devices",
		Run: func(cmd *cobra.Command, args []string) {
			if err := List(); err != util.ErrorSuccess {
				os.Exit(err)
			}
		},
	}

	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "show host and backend information",
		Run: func(cmd *cobra.Command, args []string) {
			if err := Info(); err != util.ErrorSuccess {
				os.Exit(err)
			}
		},
	}

	applyCmd = &cobra.Command{
		Use:   "apply",
		Short: "apply tuning targets to one GPU",
		Run: func(cmd *cobra.Command, args []string) {
			if err := Apply(); err != util.ErrorSuccess {
				os.Exit(err)
			}
		},
	}

	resetCmd = &cobra.Command{
		Use:   "reset",
		Short: "reset tuning targets of one GPU to its observed operating point",
		Run: func(cmd *cobra.Command, args []string) {
			if err := Reset(); err != util.ErrorSuccess {
				os.Exit(err)
			}
		},
	}
)

// ParseCmdArgs executes the root command.
func ParseCmdArgs() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(util.ErrorCmdArg)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&FlagConfigFilePath, "config", "C",
		"", "path to configuration file")

	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVarP(&FlagInterval, "interval", "i", "",
		"refresh interval, overrides the configured sample period")
	watchCmd.Flags().Uint64VarP(&FlagIterations, "iterations", "n", 0,
		"stop after this many refreshes, 0 means run until interrupted")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(infoCmd)

	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().IntVarP(&FlagGpuIndex, "gpu", "g", 0,
		"index of the GPU to tune")
	applyCmd.Flags().IntVar(&FlagCoreClock, "core-clock", 0,
		"target core clock in MHz, 0 leaves clocks unchanged")
	applyCmd.Flags().IntVar(&FlagMemoryClock, "memory-clock", 0,
		"target memory clock in MHz, passed through with the core clock")
	applyCmd.Flags().IntVar(&FlagPowerLimit, "power-limit", 100,
		"power limit as a percentage of the reported limit, 0 leaves it unchanged")
	applyCmd.Flags().StringVar(&FlagFanCurve, "fan-curve", "",
		"five comma-separated fan duty percentages, e.g. 30,40,50,70,85")

	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().IntVarP(&FlagGpuIndex, "gpu", "g", 0,
		"index of the GPU to reset")
}
