package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/mindwell-app/mindwell/internal/bootstrap"
	"github.com/mindwell-app/mindwell/internal/pkg/buildinfo"
	"github.com/mindwell-app/mindwell/internal/schema"
	"github.com/mindwell-app/mindwell/internal/service"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	core    *bootstrap.Core
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mindwell",
		Short: "MindWell 进度引擎管理工具",
		Long:  `MindWell 进度引擎的本地管理工具：活动入账、统计查询、徽章评估和稳定性计算。`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var err error
			core, err = bootstrap.NewCore(cfgFile)
			if err != nil {
				slog.Error("初始化失败", "error", err)
				os.Exit(1)
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if core != nil {
				core.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径")

	rootCmd.AddCommand(recordCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(activitiesCmd())
	rootCmd.AddCommand(badgesCmd())
	rootCmd.AddCommand(stabilityCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func recordCmd() *cobra.Command {
	var dedupKey string
	var points float64
	cmd := &cobra.Command{
		Use:   "record <account-id> <kind>",
		Short: "记录一次计分动作",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			in := service.RecordInput{
				AccountID: args[0],
				Kind:      args[1],
				DedupKey:  dedupKey,
			}
			if cmd.Flags().Changed("points") {
				in.Points = &points
			}

			result, err := core.Services.Progression.RecordActivity(ctx, in)
			if err != nil {
				slog.Error("入账失败", "error", err)
				os.Exit(1)
			}
			if !result.Applied {
				fmt.Println("重复入账（dedup_key 已存在），无副作用")
				return
			}
			fmt.Printf("入账成功: +%.1f 分，当前积分 %.1f，连续 %d 天\n",
				result.Points, result.NewScore, result.Streak.Current)
		},
	}
	cmd.Flags().StringVar(&dedupKey, "dedup-key", "", "幂等键（重试同一动作必须复用）")
	cmd.Flags().Float64Var(&points, "points", 0, "覆盖该类型的默认分值")
	return cmd
}

func activitiesCmd() *cobra.Command {
	var date string
	var limit int
	cmd := &cobra.Command{
		Use:   "activities <account-id>",
		Short: "查看账号的台账事件",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			var events []schema.ActivityEvent
			var err error
			if date != "" {
				events, err = core.Services.Progression.ActivitiesOnDate(ctx, args[0], date)
			} else {
				events, err = core.Services.Progression.RecentActivities(ctx, args[0], limit)
			}
			if err != nil {
				slog.Error("查询失败", "error", err)
				os.Exit(1)
			}
			for _, ev := range events {
				fmt.Printf("%s  %-24s %+.1f\n",
					time.UnixMilli(ev.Timestamp).UTC().Format("2006-01-02 15:04"),
					ev.Kind, ev.Points)
			}
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "只看某个 UTC 日历日（YYYY-MM-DD）")
	cmd.Flags().IntVar(&limit, "limit", 20, "最近条数")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <account-id>",
		Short: "查看账号统计快照",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			snap, err := core.Services.Progression.GetStatistics(ctx, args[0])
			if err != nil {
				slog.Error("查询失败", "error", err)
				os.Exit(1)
			}

			fmt.Printf("账号: %s\n", snap.AccountID)
			fmt.Printf("积分: %.1f  经验: %d  金币: %d\n", snap.Score, snap.Experience, snap.Coins)
			fmt.Printf("连续: %d 天（最长 %d 天）\n", snap.CurrentStreak, snap.LongestStreak)
			fmt.Println("计数器:")
			for name, count := range snap.Counters {
				fmt.Printf("  %-24s %d\n", name, count)
			}
		},
	}
}

func badgesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "badges",
		Short: "徽章目录与评估",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "catalog",
		Short: "查看徽章目录",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			defs, err := core.Services.Badges.GetCatalog(ctx)
			if err != nil {
				slog.Error("查询失败", "error", err)
				os.Exit(1)
			}
			for _, def := range defs {
				fmt.Printf("%-20s %s（%s >= %d）\n", def.Key, def.Name, def.Counter, def.Threshold)
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "evaluate <account-id>",
		Short: "评估并发放达标徽章",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			awards, err := core.Services.Badges.Evaluate(ctx, args[0])
			for _, award := range awards {
				fmt.Printf("新徽章: %s\n", award.BadgeKey)
			}
			if err != nil {
				// 已发放的徽章照常展示，失败的留给重试
				slog.Error("评估未完全成功", "error", err)
				os.Exit(1)
			}
			if len(awards) == 0 {
				fmt.Println("本次无新徽章")
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list <account-id>",
		Short: "查看已获得的徽章",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			awards, err := core.Services.Badges.ListAwards(ctx, args[0])
			if err != nil {
				slog.Error("查询失败", "error", err)
				os.Exit(1)
			}
			for _, award := range awards {
				fmt.Printf("%-20s %s\n", award.BadgeKey,
					time.UnixMilli(award.EarnedAt).Format("2006-01-02 15:04"))
			}
		},
	})

	return cmd
}

func stabilityCmd() *cobra.Command {
	var accountID string
	var persist bool
	cmd := &cobra.Command{
		Use:   "stability <R> <L> <G> <C> <A> <n>",
		Short: "计算系统稳定性得分",
		Args:  cobra.ExactArgs(6),
		Run: func(cmd *cobra.Command, args []string) {
			vals := make([]float64, 6)
			for i, raw := range args {
				f, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					slog.Error("参数不是数字", "arg", raw)
					os.Exit(1)
				}
				vals[i] = f
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			result, err := core.Services.Stability.Evaluate(ctx, accountID, service.StabilityVector{
				Resources: vals[0],
				Local:     vals[1],
				Global:    vals[2],
				Coupling:  vals[3],
				Agreement: vals[4],
				Scaling:   vals[5],
			}, persist)
			if err != nil {
				slog.Error("计算失败", "error", err)
				os.Exit(1)
			}
			if !result.Valid {
				fmt.Println("该输入下公式无定义（分母 <= 0）")
				return
			}
			fmt.Printf("稳定性得分: %.4f\n", result.Score)
		},
	}
	cmd.Flags().StringVar(&accountID, "account", "", "账号 ID（落盘时必填）")
	cmd.Flags().BoolVar(&persist, "persist", false, "结果有效时写入稳定性记录")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "查看版本",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("mindwell %s (%s)\n", buildinfo.Version, buildinfo.Commit)
		},
	}
}
