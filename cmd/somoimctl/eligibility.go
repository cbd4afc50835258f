package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/metacode22/study-somoim/internal/app/system/eligibility"
	"github.com/metacode22/study-somoim/internal/domain/models"
	"github.com/spf13/cobra"
)

type eligibilityReport struct {
	ChapterID         string                   `json:"chapterId" yaml:"chapterId"`
	GroupID           string                   `json:"groupId" yaml:"groupId"`
	UserID            string                   `json:"userId" yaml:"userId"`
	ParticipationType models.ParticipationType `json:"participationType" yaml:"participationType"`
	eligibility.Result `yaml:",inline"`
}

func (eligibilityReport) header() []string {
	return []string{"GROUP", "USER", "TYPE", "CAN APPLY", "REASON"}
}

func (r eligibilityReport) rows() [][]string {
	return [][]string{{r.GroupID, r.UserID, string(r.ParticipationType), strconv.FormatBool(r.CanApply), r.Reason}}
}

type eligibilityOptions struct {
	group string
	user  string
	typ   string
}

func eligibilityCommand() *cobra.Command {
	var opts eligibilityOptions

	cmd := &cobra.Command{
		Use:   "eligibility",
		Short: "Run the weekday and club-limit pre-check for a user and group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := envFrom(cmd)

			user := opts.user
			if user == "" {
				user = e.cfg.UserID
			}
			if user == "" {
				return errors.New("--user or SOMOIM_USER_ID is required")
			}
			pt := models.ParticipationType(opts.typ)
			if !pt.Valid() {
				return fmt.Errorf("--type must be regular or observer, got %q", opts.typ)
			}

			ctx, cancel := e.context(cmd)
			defer cancel()

			ch, err := e.api.CurrentChapter(ctx)
			if err != nil {
				return err
			}
			if ch == nil {
				return errNoChapter
			}

			v := eligibility.New(e.api, e.log, nil)
			res := v.Validate(ctx, eligibility.Request{
				ChapterID:         ch.ID,
				GroupID:           opts.group,
				UserID:            user,
				ParticipationType: pt,
			})
			return render(cmd.OutOrStdout(), e.format, eligibilityReport{
				ChapterID:         ch.ID,
				GroupID:           opts.group,
				UserID:            user,
				ParticipationType: pt,
				Result:            res,
			})
		},
	}

	cmd.Flags().StringVar(&opts.group, "group", "", "chapter group id")
	cmd.Flags().StringVar(&opts.user, "user", "", "backend user id (defaults to SOMOIM_USER_ID)")
	cmd.Flags().StringVar(&opts.typ, "type", string(models.ParticipationRegular), "regular or observer")
	_ = cmd.MarkFlagRequired("group")
	return cmd
}
