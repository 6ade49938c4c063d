package spotted

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/alexandre-normand/figlet4go"
	"github.com/nlopes/slack"
	"github.com/spottedbot/spotted/config"
	"github.com/spottedbot/spotted/store"
)

// Digest posts a recurring leaderboard summary to a channel, crowning the
// current leader with a figlet banner
type Digest struct {
	storer  store.ScoreStorer
	sender  MessageSender
	channel string
	count   int

	renderer      *figlet4go.AsciiRender
	renderOptions *figlet4go.RenderOptions

	log SLogger
}

// NewDigest creates a digest poster for the given channel
func NewDigest(storer store.ScoreStorer, sender MessageSender, channel string, count int, log SLogger) (d *Digest) {
	d = new(Digest)
	d.storer = storer
	d.sender = sender
	d.channel = channel
	d.count = count
	d.renderOptions = figlet4go.NewRenderOptions()
	d.renderer = figlet4go.NewAsciiRender()
	d.log = log

	return d
}

// Post reads the current top scores and posts the digest message
func (d *Digest) Post() {
	top, err := d.storer.Top(d.count)
	if err != nil {
		d.log.Printf("Error getting top [%d] scores for digest: %v", d.count, err)
		return
	}

	if len(top) == 0 {
		d.log.Debugf("No scores recorded yet, skipping digest")
		return
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "%s\n", d.renderLeaderBanner(top[0]))
	fmt.Fprintf(&b, "Here's where the spotting game stands:\n")
	b.WriteString(formatLeaderboard(top))

	if _, _, err = d.sender.PostMessage(d.channel, slack.MsgOptionText(b.String(), false)); err != nil {
		d.log.Printf("Error posting digest to channel [%s]: %v", d.channel, err)
	}
}

// renderLeaderBanner renders the leader's name as a figlet banner, falling
// back to a plain trophy line when rendering fails
func (d *Digest) renderLeaderBanner(leader store.ScoreEntry) string {
	name := leader.DisplayName
	if name == "" {
		name = leader.UserID
	}

	rendered, err := d.renderer.RenderOpts(name, d.renderOptions)
	if err != nil {
		d.log.Debugf("Error rendering banner for [%s]: %v", name, err)
		return fmt.Sprintf(":trophy: %s", name)
	}

	return fmt.Sprintf("```%s```", rendered)
}

// formatLeaderboard renders score entries as an aligned monospace table
func formatLeaderboard(entries []store.ScoreEntry) string {
	var b bytes.Buffer
	b.WriteString("```")
	w := new(tabwriter.Writer)
	bufw := bufio.NewWriter(&b)
	w.Init(bufw, 5, 0, 1, ' ', 0)
	for i, entry := range entries {
		name := entry.DisplayName
		if name == "" {
			name = entry.UserID
		}

		fmt.Fprintf(w, "%d\t%d\t%s\n", i+1, entry.Points, name)
	}
	fmt.Fprintf(w, "```\n")

	bufw.Flush()
	w.Flush()
	return b.String()
}

// defaultDigestCount is how many leaderboard entries a digest shows when the
// configuration doesn't say otherwise
const defaultDigestCount = 10

// digestCount reads the digest entry count, defaulting when absent or
// unparseable
func digestCount(digestConf map[string]string) (count int) {
	count, err := strconv.Atoi(digestConf[config.DigestCountKey])
	if err != nil || count <= 0 {
		return defaultDigestCount
	}

	return count
}
