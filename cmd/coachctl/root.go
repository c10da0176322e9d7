package main

import (
	"fmt"
	"strings"

	"github.com/fitmind/fitmind/internal/coach"
	"github.com/fitmind/fitmind/internal/profile"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "coachctl",
		Short: "Try the FitMind rule-based coach from the terminal",
		Long: `coachctl runs the same classifier and reply composer as the /chatbot endpoint.

Examples:
  coachctl classify "I can't sleep at night"
  coachctl reply "I want to workout today" --activity=high --sleep=5`,
		SilenceUsage: true,
	}
	root.AddCommand(newClassifyCmd(), newReplyCmd())
	return root
}

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <message>",
		Short: "Print the topic a message is classified as",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), coach.Classify(strings.Join(args, " ")))
			return nil
		},
	}
}

type profileFlags struct {
	age      int
	height   float64
	weight   float64
	sleep    float64
	minutes  int
	activity string
	stress   string
}

func newReplyCmd() *cobra.Command {
	var f profileFlags
	cmd := &cobra.Command{
		Use:   "reply <message>",
		Short: "Print the three-part coach reply for a message",
		Long: `Print the three-part coach reply for a message.

Without any profile flag the reply is composed as for an anonymous user.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := f.profile(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), coach.Respond(strings.Join(args, " "), p).String())
			return nil
		},
	}
	cmd.Flags().IntVar(&f.age, "age", 0, "age in years")
	cmd.Flags().Float64Var(&f.height, "height", 0, "height in cm")
	cmd.Flags().Float64Var(&f.weight, "weight", 0, "weight in kg")
	cmd.Flags().Float64Var(&f.sleep, "sleep", 0, "average hours of sleep")
	cmd.Flags().IntVar(&f.minutes, "minutes", 0, "daily activity minutes")
	cmd.Flags().StringVar(&f.activity, "activity", profile.LevelModerate, "activity level (low, moderate, high)")
	cmd.Flags().StringVar(&f.stress, "stress", profile.LevelMedium, "stress level (low, medium, high)")
	return cmd
}

// profile builds an ad-hoc profile from the flags that were set; nil when none were.
func (f profileFlags) profile(cmd *cobra.Command) (*profile.Profile, error) {
	flags := cmd.Flags()
	if flags.NFlag() == 0 {
		return nil, nil
	}

	activity := strings.ToLower(strings.TrimSpace(f.activity))
	switch activity {
	case profile.LevelLow, profile.LevelModerate, profile.LevelHigh:
	default:
		return nil, fmt.Errorf("invalid --activity %q: use low, moderate or high", f.activity)
	}
	stress := strings.ToLower(strings.TrimSpace(f.stress))
	switch stress {
	case profile.LevelLow, profile.LevelMedium, profile.LevelHigh:
	default:
		return nil, fmt.Errorf("invalid --stress %q: use low, medium or high", f.stress)
	}

	p := &profile.Profile{ActivityLevel: activity, StressLevel: stress}
	if flags.Changed("age") {
		p.Age = &f.age
	}
	if flags.Changed("height") {
		p.HeightCM = &f.height
	}
	if flags.Changed("weight") {
		p.WeightKG = &f.weight
	}
	if flags.Changed("sleep") {
		p.SleepHours = &f.sleep
	}
	if flags.Changed("minutes") {
		p.ActivityMinutes = &f.minutes
	}
	return p, nil
}
