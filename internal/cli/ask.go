package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/barracksmedia/site-assistant/internal/client"
	"github.com/barracksmedia/site-assistant/internal/models"
	"github.com/spf13/cobra"
)

var (
	askOutputFile string
	askJSON       bool
	askWebSocket  bool
	askTimeout    time.Duration
)

var askCmd = &cobra.Command{
	Use:   "ask <message>...",
	Short: "Ask the running assistant a question",
	Long: `Send a visitor message to the assistant server and print the spoken
answer with its episode recommendations.

Several messages are sent in order. With --ws they share one WebSocket
connection.

Examples:
  assistant ask "I love stories about veterans coming home"
  assistant ask "how much does podcast editing cost" -o answer.mp3
  assistant ask --ws "hi" "what shows do you have?"
  assistant ask "hello" --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askOutputFile, "output", "o", "", "write the audio of the last answer to file")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print raw JSON responses")
	askCmd.Flags().BoolVar(&askWebSocket, "ws", false, "send messages over one WebSocket connection")
	askCmd.Flags().DurationVar(&askTimeout, "timeout", time.Minute, "overall timeout")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), askTimeout)
	defer cancel()

	ask := apiClient().Ask
	if askWebSocket {
		session, err := apiClient().Dial(ctx)
		if err != nil {
			return err
		}
		defer session.Close()
		ask = session.Ask
	}

	out := cmd.OutOrStdout()
	var last *models.AssistantResponse
	for _, message := range args {
		resp, err := ask(ctx, message)
		if err != nil {
			if client.IsRateLimited(err) {
				fmt.Fprintln(out, theme.hintStyle().Render("Rate limited. Wait a minute and try again."))
			}
			return err
		}
		last = resp

		if askJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(resp); err != nil {
				return err
			}
			continue
		}
		printAnswer(out, message, resp)
	}

	if askOutputFile != "" && last != nil {
		audio, err := client.DecodeAudio(last)
		if err != nil {
			return err
		}
		if err := os.WriteFile(askOutputFile, audio, 0o644); err != nil {
			return fmt.Errorf("write audio: %w", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), theme.successStyle().Render(
			fmt.Sprintf("✓ Wrote %d bytes of %s to %s", len(audio), last.Mime, askOutputFile)))
	}
	return nil
}

// printAnswer renders one exchange for a human reader.
func printAnswer(w io.Writer, message string, resp *models.AssistantResponse) {
	fmt.Fprintln(w, theme.hintStyle().Render("> "+message))
	fmt.Fprintln(w, theme.answerStyle().Render(resp.Text))

	if len(resp.Recommendations) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, theme.headingStyle().Render("Recommended episodes"))
		for _, r := range resp.Recommendations {
			line := fmt.Sprintf("  • %s — %s", r.Show, r.Title)
			if r.URL != "" {
				line += " " + theme.hintStyle().Render(r.URL)
			}
			fmt.Fprintln(w, line)
		}
	}

	if resp.Debug != nil {
		d := resp.Debug
		fmt.Fprintln(w)
		fmt.Fprintln(w, theme.hintStyle().Render(fmt.Sprintf(
			"intent=%s status=%s services=%d episodes=%d candidates=%d/%d",
			d.Intent, d.Status, d.ServicesLoaded, d.EpisodesLoaded, d.ServiceCandidates, d.CandidatesFound)))
		if len(d.TopEpisodes) > 0 {
			fmt.Fprintln(w, theme.hintStyle().Render("top episodes: "+strings.Join(d.TopEpisodes, "; ")))
		}
	}

	if resp.AudioBase64 != "" {
		fmt.Fprintln(w, theme.hintStyle().Render(fmt.Sprintf("[%s, %d bytes base64]", resp.Mime, len(resp.AudioBase64))))
	}
	fmt.Fprintln(w)
}
