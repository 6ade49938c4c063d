package spotted

import (
	"strconv"
	"strings"
	"time"

	"github.com/nlopes/slack"
	"github.com/spf13/viper"
	"github.com/spottedbot/spotted/config"
)

// Spot is the normalized scoring fact extracted from slack events: who posted
// the photo, who got spotted in it, and the dedup key collapsing duplicate
// deliveries of the same logical spot
type Spot struct {
	// Poster is the user who posted the photo
	Poster string

	// Targets are the mentioned users, self-mention excluded, capped at the
	// fan-out limit
	Targets []string

	// Channel is where the originating message lives
	Channel string

	// DedupKey is the originating message timestamp. For a file_shared event
	// this is the resolved message's timestamp, not the file event's own
	// identifier, so both delivery channels collapse onto the same key
	DedupKey string

	// Dropped counts valid mentions discarded over the fan-out cap, reported
	// in the acknowledgement rather than silently processed
	Dropped int
}

// adjacencyWindowSeconds bounds how far around an image-only message the
// classifier looks for a completing mention message
const adjacencyWindowSeconds = 1.

// Classifier decides whether an inbound event constitutes a valid spot and
// produces the normalized Spot. It owns the policy ordering: subtype and
// author checks first, then the image predicate (with a single bounded
// wait-then-refetch for late attachments), then mention extraction and
// normalization
type Classifier struct {
	source  EventSource
	pending *pendingShares
	retry   RetryPolicy
	log     SLogger

	attachmentWait    time.Duration
	adjacencyMatching bool
	maxFanOut         int
}

func newClassifier(v *viper.Viper, source EventSource, pending *pendingShares, log SLogger) (c *Classifier) {
	c = new(Classifier)
	c.source = source
	c.pending = pending
	c.retry = DefaultRetryPolicy()
	c.log = log
	c.attachmentWait = time.Duration(v.GetInt(config.AttachmentWaitMillisKey)) * time.Millisecond
	c.adjacencyMatching = v.GetBool(config.AdjacencyMatchingKey)
	c.maxFanOut = v.GetInt(config.MaxFanOutKey)

	return c
}

// ClassifyMessage evaluates a message event. It returns the normalized spot
// and true if the message is a genuine spot or nil and false otherwise.
//
// A message with no files at all gets a single bounded wait-then-refetch by
// its timestamp before concluding "no image": slack sometimes delivers the
// message event before it's done attaching the files. The wait is singular,
// not a retry loop, to keep user-visible latency predictable
func (c *Classifier) ClassifyMessage(ev *slack.MessageEvent) (spot *Spot, ok bool) {
	if ev.SubType != "" || ev.ReplyTo > 0 {
		return nil, false
	}

	if !isValidUserID(ev.User) {
		return nil, false
	}

	files := ev.Files
	if len(files) == 0 {
		files = c.refetchFiles(ev.Channel, ev.Timestamp)
	}

	if !hasImage(files) {
		return nil, false
	}

	mentions := ExtractMentions(ev.Text)
	if len(mentions) == 0 && c.adjacencyMatching {
		mentions = c.adjacentMentions(ev.Channel, ev.User, ev.Timestamp)
	}

	return c.normalize(ev.User, ev.Channel, ev.Timestamp, mentions)
}

// ClassifyFileShared evaluates a file_shared event. The event carries no text
// so the classifier resolves the originating message from the file's share
// info and extracts mentions from that message. When the share has an image
// but no mentions anywhere, it's parked as a pending share so a mention-only
// companion message can still complete it within the window
func (c *Classifier) ClassifyFileShared(ev *slack.FileSharedEvent) (spot *Spot, ok bool) {
	fileID := ev.FileID
	if fileID == "" {
		fileID = ev.File.ID
	}

	if fileID == "" {
		return nil, false
	}

	var file *slack.File
	err := c.retry.Do(func() (ferr error) {
		file, _, _, ferr = c.source.GetFileInfo(fileID, 0, 0)
		return ferr
	})

	if err != nil {
		c.log.Printf("Error getting file info for shared file [%s]: %v", fileID, err)
		return nil, false
	}

	if !isImageMimetype(file.Mimetype) || !isValidUserID(file.User) {
		return nil, false
	}

	for channel, shares := range file.Shares.Public {
		for _, share := range shares {
			if spot, ok = c.classifySharedFileMessage(file, channel, share.Ts); ok {
				return spot, true
			}
		}
	}

	return nil, false
}

// CompletePending matches a mention-only message against the oldest recent
// mention-less file share in the same channel. The file's uploader is the
// poster and the dedup key stays the file message's timestamp so a later
// redelivery of the image message can't score again
func (c *Classifier) CompletePending(channel string, mentions []string) (spot *Spot, ok bool) {
	if len(mentions) == 0 {
		return nil, false
	}

	share, found := c.pending.take(channel)
	if !found {
		return nil, false
	}

	c.log.Debugf("Matched mention-only message to pending file share [%s] from [%s]", share.fileID, share.poster)

	return c.normalize(share.poster, share.channel, share.messageTimestamp, mentions)
}

// classifySharedFileMessage resolves one public share of a file to its
// originating message and classifies it
func (c *Classifier) classifySharedFileMessage(file *slack.File, channel string, messageTimestamp string) (spot *Spot, ok bool) {
	mentions := make([]string, 0)
	if msg, found := c.fetchMessageAt(channel, messageTimestamp); found {
		mentions = ExtractMentions(msg.Text)
	}

	if len(mentions) == 0 && c.adjacencyMatching {
		mentions = c.adjacentMentions(channel, file.User, messageTimestamp)
	}

	if len(mentions) == 0 {
		c.pending.add(pendingShare{poster: file.User, channel: channel, messageTimestamp: messageTimestamp, fileID: file.ID})
		c.log.Debugf("No mentions for shared file [%s], parked for later matching", file.ID)

		return nil, false
	}

	return c.normalize(file.User, channel, messageTimestamp, mentions)
}

// normalize excludes self-mentions, enforces the fan-out cap and rejects
// spots left with no targets
func (c *Classifier) normalize(poster string, channel string, messageTimestamp string, mentions []string) (spot *Spot, ok bool) {
	targets := make([]string, 0, len(mentions))
	for _, mention := range mentions {
		if mention != poster {
			targets = append(targets, mention)
		}
	}

	if len(targets) == 0 {
		return nil, false
	}

	dropped := 0
	if c.maxFanOut > 0 && len(targets) > c.maxFanOut {
		dropped = len(targets) - c.maxFanOut
		targets = targets[:c.maxFanOut]
	}

	return &Spot{Poster: poster, Targets: targets, Channel: channel, DedupKey: messageTimestamp, Dropped: dropped}, true
}

// refetchFiles waits once for slack to finish attaching files and re-reads
// the message by its timestamp
func (c *Classifier) refetchFiles(channel string, messageTimestamp string) (files []slack.File) {
	if c.attachmentWait <= 0 {
		return nil
	}

	time.Sleep(c.attachmentWait)

	msg, found := c.fetchMessageAt(channel, messageTimestamp)
	if !found {
		return nil
	}

	return msg.Files
}

// fetchMessageAt reads back a single message by its timestamp
func (c *Classifier) fetchMessageAt(channel string, messageTimestamp string) (msg slack.Message, found bool) {
	var resp *slack.GetConversationHistoryResponse
	err := c.retry.Do(func() (herr error) {
		resp, herr = c.source.GetConversationHistory(&slack.GetConversationHistoryParameters{
			ChannelID: channel,
			Latest:    messageTimestamp,
			Oldest:    messageTimestamp,
			Inclusive: true,
			Limit:     1,
		})
		return herr
	})

	if err != nil {
		c.log.Printf("Error fetching message [%s] in channel [%s]: %v", messageTimestamp, channel, err)
		return msg, false
	}

	for _, m := range resp.Messages {
		if m.Timestamp == messageTimestamp {
			return m, true
		}
	}

	return msg, false
}

// adjacentMentions looks for mentions in messages by the same poster
// immediately around the image message. Restricting the window to the
// poster's own messages trades recall for precision: borrowing an unrelated
// user's mention would mis-attribute the spot
func (c *Classifier) adjacentMentions(channel string, poster string, messageTimestamp string) (mentions []string) {
	var resp *slack.GetConversationHistoryResponse
	err := c.retry.Do(func() (herr error) {
		resp, herr = c.source.GetConversationHistory(&slack.GetConversationHistoryParameters{
			ChannelID: channel,
			Oldest:    offsetTimestamp(messageTimestamp, -adjacencyWindowSeconds),
			Latest:    offsetTimestamp(messageTimestamp, adjacencyWindowSeconds),
			Inclusive: true,
			Limit:     5,
		})
		return herr
	})

	if err != nil {
		c.log.Printf("Error fetching adjacent messages around [%s] in channel [%s]: %v", messageTimestamp, channel, err)
		return nil
	}

	for _, m := range resp.Messages {
		if m.Timestamp == messageTimestamp || m.User != poster {
			continue
		}

		if found := ExtractMentions(m.Text); len(found) > 0 {
			return found
		}
	}

	return nil
}

// offsetTimestamp shifts a slack message timestamp ("1578422639.001700") by
// the given number of seconds
func offsetTimestamp(messageTimestamp string, seconds float64) string {
	ts, err := strconv.ParseFloat(messageTimestamp, 64)
	if err != nil {
		return messageTimestamp
	}

	return strconv.FormatFloat(ts+seconds, 'f', 6, 64)
}

func hasImage(files []slack.File) bool {
	for _, f := range files {
		if isImageMimetype(f.Mimetype) {
			return true
		}
	}

	return false
}

// isImageMimetype applies the image predicate on the declared MIME type
// rather than the file extension
func isImageMimetype(mimetype string) bool {
	return strings.HasPrefix(mimetype, "image/")
}
