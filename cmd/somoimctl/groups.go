package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/metacode22/study-somoim/internal/app/system/groupcard"
	"github.com/metacode22/study-somoim/internal/app/system/recruitment"
	"github.com/spf13/cobra"
)

type cardList []groupcard.Card

func (cardList) header() []string {
	return []string{"ID", "NAME", "TYPE", "CATEGORY", "SCHEDULE", "LEADER", "STATUS"}
}

func (l cardList) rows() [][]string {
	out := make([][]string, 0, len(l))
	for _, c := range l {
		out = append(out, []string{c.ID, c.Name, string(c.Type), c.Category, c.Schedule, c.LeaderName, c.ApplyStatusLabel})
	}
	return out
}

type groupsOptions struct {
	status     string
	days       []string
	categories []string
	kind       string
}

// filters maps the flags onto the same query the home page uses.
func (o groupsOptions) filters() recruitment.Filters {
	q := url.Values{}
	if o.status != "" {
		q.Set("status", o.status)
	}
	for _, d := range o.days {
		q.Add("day", d)
	}
	for _, c := range o.categories {
		q.Add("category", c)
	}
	return recruitment.FromQuery(q)
}

func narrowKind(cards []groupcard.Card, kind string) ([]groupcard.Card, error) {
	clubs, studies := groupcard.Split(cards)
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "":
		return cards, nil
	case "club":
		return clubs, nil
	case "study":
		return studies, nil
	default:
		return nil, fmt.Errorf("--kind must be club or study, got %q", kind)
	}
}

func groupsCommand() *cobra.Command {
	var opts groupsOptions

	cmd := &cobra.Command{
		Use:   "groups",
		Short: "List the current chapter's recruiting groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := envFrom(cmd)
			ctx, cancel := e.context(cmd)
			defer cancel()

			ch, err := e.api.CurrentChapter(ctx)
			if err != nil {
				return err
			}
			if ch == nil {
				return errNoChapter
			}
			groups, err := e.api.RecruitingGroups(ctx, ch.ID)
			if err != nil {
				return err
			}

			cards := recruitment.Apply(groupcard.FromAll(groups), opts.filters())
			if cards, err = narrowKind(cards, opts.kind); err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), e.format, cardList(cards))
		},
	}

	cmd.Flags().StringVar(&opts.status, "status", "", "apply status, e.g. regular or closed")
	cmd.Flags().StringSliceVar(&opts.days, "day", nil, "meeting day(s), e.g. 월,목")
	cmd.Flags().StringSliceVar(&opts.categories, "category", nil, "club category/categories")
	cmd.Flags().StringVar(&opts.kind, "kind", "", "club or study")
	return cmd
}
