package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/lueurxax/fakenews-web/internal/core/domain"
	apperrors "github.com/lueurxax/fakenews-web/internal/core/errors"
	"github.com/lueurxax/fakenews-web/internal/ui"
)

func newFactCheckCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "factcheck",
		Short: "Show the fact-check sources of the last analysis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			evidence, err := root.evidence()
			if err != nil {
				return err
			}

			page := &ui.DetailPage{}

			items, err := evidence.Load(cmd.Context(), cliSessionID)
			switch {
			case err == nil:
				page.Available = true
				page.Evidence = ui.NewEvidenceViews(items)
			case errors.Is(err, apperrors.ErrSnapshotNotFound), errors.Is(err, apperrors.ErrSnapshotCorrupt):
			default:
				root.logger().Debug().Err(err).Msg("fact-check snapshot unavailable")
			}

			if root.output == outputJSON {
				if items == nil {
					items = []domain.EvidenceItem{}
				}

				return writeJSON(cmd.OutOrStdout(), items)
			}

			printEvidence(cmd.OutOrStdout(), page)

			return nil
		},
	}
}
