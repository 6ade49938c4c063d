package spotted

import (
	"fmt"
	"io/ioutil"
	"log"
	"testing"
	"time"

	"github.com/nlopes/slack"
	"github.com/spottedbot/spotted/config"
	"github.com/stretchr/testify/assert"
)

// fakeEventSource serves canned history and file info responses keyed the way
// the classifier queries them
type fakeEventSource struct {
	messagesByTimestamp map[string]slack.Message
	windowMessages      []slack.Message
	files               map[string]*slack.File

	historyErr  error
	fileInfoErr error

	historyCalls int
}

func (f *fakeEventSource) GetConversationHistory(params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error) {
	f.historyCalls++

	if f.historyErr != nil {
		return nil, f.historyErr
	}

	resp := new(slack.GetConversationHistoryResponse)
	if params.Latest == params.Oldest {
		if msg, ok := f.messagesByTimestamp[params.Latest]; ok {
			resp.Messages = []slack.Message{msg}
		}

		return resp, nil
	}

	resp.Messages = f.windowMessages
	return resp, nil
}

func (f *fakeEventSource) GetFileInfo(fileID string, count int, page int) (*slack.File, []slack.Comment, *slack.Paging, error) {
	if f.fileInfoErr != nil {
		return nil, nil, nil, f.fileInfoErr
	}

	file, ok := f.files[fileID]
	if !ok {
		return nil, nil, nil, fmt.Errorf("file_not_found")
	}

	return file, nil, nil, nil
}

func newTestClassifier(source EventSource, overrides map[string]interface{}) *Classifier {
	v := config.NewViperWithDefaults()
	v.Set(config.AttachmentWaitMillisKey, 1)
	for key, value := range overrides {
		v.Set(key, value)
	}

	c := newClassifier(v, source, newPendingShares(time.Minute), testLogger())
	c.retry = RetryPolicy{MaxAttempts: 1, InitialBackoff: time.Millisecond, Multiplier: 1.}

	return c
}

func testLogger() *sLogger {
	return NewSLogger(log.New(ioutil.Discard, "", 0), false)
}

func imageMessageEvent(user string, channel string, timestamp string, text string) *slack.MessageEvent {
	return &slack.MessageEvent{Msg: slack.Msg{
		User:      user,
		Channel:   channel,
		Timestamp: timestamp,
		Text:      text,
		Files:     []slack.File{{ID: "F11111111", Mimetype: "image/png"}},
	}}
}

func TestClassifyImageMessageWithMention(t *testing.T) {
	c := newTestClassifier(&fakeEventSource{}, nil)

	spot, ok := c.ClassifyMessage(imageMessageEvent("U111AAAA1", "C11111111", "100.001000", "<@U222BBBB2> nice catch"))

	if assert.True(t, ok) {
		assert.Equal(t, "U111AAAA1", spot.Poster)
		assert.Equal(t, []string{"U222BBBB2"}, spot.Targets)
		assert.Equal(t, "C11111111", spot.Channel)
		assert.Equal(t, "100.001000", spot.DedupKey)
		assert.Equal(t, 0, spot.Dropped)
	}
}

func TestClassifyRejectsMessageSubtypes(t *testing.T) {
	c := newTestClassifier(&fakeEventSource{}, nil)

	ev := imageMessageEvent("U111AAAA1", "C11111111", "100.001000", "<@U222BBBB2>")
	ev.SubType = "message_changed"

	_, ok := c.ClassifyMessage(ev)
	assert.False(t, ok)
}

func TestClassifyRejectsReplayedMessages(t *testing.T) {
	c := newTestClassifier(&fakeEventSource{}, nil)

	ev := imageMessageEvent("U111AAAA1", "C11111111", "100.001000", "<@U222BBBB2>")
	ev.ReplyTo = 12

	_, ok := c.ClassifyMessage(ev)
	assert.False(t, ok)
}

func TestClassifyRejectsMalformedAuthor(t *testing.T) {
	c := newTestClassifier(&fakeEventSource{}, nil)

	_, ok := c.ClassifyMessage(imageMessageEvent("not-a-user", "C11111111", "100.001000", "<@U222BBBB2>"))
	assert.False(t, ok)
}

func TestClassifyRejectsNonImageAttachment(t *testing.T) {
	c := newTestClassifier(&fakeEventSource{}, nil)

	ev := imageMessageEvent("U111AAAA1", "C11111111", "100.001000", "<@U222BBBB2>")
	ev.Files = []slack.File{{ID: "F11111111", Mimetype: "application/pdf"}}

	_, ok := c.ClassifyMessage(ev)
	assert.False(t, ok)
}

func TestClassifyRejectsMentionsWithoutImage(t *testing.T) {
	source := &fakeEventSource{messagesByTimestamp: map[string]slack.Message{}}
	c := newTestClassifier(source, nil)

	ev := imageMessageEvent("U111AAAA1", "C11111111", "100.001000", "<@U222BBBB2>")
	ev.Files = nil

	_, ok := c.ClassifyMessage(ev)
	assert.False(t, ok)
}

func TestClassifyRecoversLateAttachmentViaRefetch(t *testing.T) {
	source := &fakeEventSource{messagesByTimestamp: map[string]slack.Message{
		"100.001000": {Msg: slack.Msg{
			User:      "U111AAAA1",
			Timestamp: "100.001000",
			Text:      "<@U222BBBB2> nice catch",
			Files:     []slack.File{{ID: "F11111111", Mimetype: "image/png"}},
		}},
	}}
	c := newTestClassifier(source, nil)

	ev := imageMessageEvent("U111AAAA1", "C11111111", "100.001000", "<@U222BBBB2> nice catch")
	ev.Files = nil

	spot, ok := c.ClassifyMessage(ev)
	if assert.True(t, ok) {
		assert.Equal(t, []string{"U222BBBB2"}, spot.Targets)
		assert.Equal(t, "100.001000", spot.DedupKey)
	}

	assert.Equal(t, 1, source.historyCalls)
}

func TestClassifyRejectsMalformedMentionsOnly(t *testing.T) {
	c := newTestClassifier(&fakeEventSource{}, nil)

	_, ok := c.ClassifyMessage(imageMessageEvent("U111AAAA1", "C11111111", "100.001000", "<@BAD> <@also-bad>"))
	assert.False(t, ok)
}

func TestClassifyExcludesSelfMention(t *testing.T) {
	c := newTestClassifier(&fakeEventSource{}, nil)

	spot, ok := c.ClassifyMessage(imageMessageEvent("U123", "C11111111", "100.001000", "<@U123> <@U222BBBB2>"))

	if assert.True(t, ok) {
		assert.Equal(t, []string{"U222BBBB2"}, spot.Targets)
	}
}

func TestClassifyRejectsSelfMentionOnly(t *testing.T) {
	c := newTestClassifier(&fakeEventSource{}, nil)

	_, ok := c.ClassifyMessage(imageMessageEvent("U123", "C11111111", "100.001000", "<@U123> look at me"))
	assert.False(t, ok)
}

func TestClassifyCapsFanOut(t *testing.T) {
	c := newTestClassifier(&fakeEventSource{}, nil)

	text := ""
	for i := 0; i < 15; i++ {
		text += fmt.Sprintf("<@U%02dAAAAA%d> ", i, i%10)
	}

	spot, ok := c.ClassifyMessage(imageMessageEvent("U111AAAA1", "C11111111", "100.001000", text))

	if assert.True(t, ok) {
		assert.Equal(t, 10, len(spot.Targets))
		assert.Equal(t, 5, spot.Dropped)
	}
}

func TestClassifyFileSharedResolvesOriginatingMessage(t *testing.T) {
	source := &fakeEventSource{
		files: map[string]*slack.File{
			"F11111111": {
				ID:       "F11111111",
				User:     "U111AAAA1",
				Mimetype: "image/jpeg",
				Shares: slack.Share{Public: map[string][]slack.ShareFileInfo{
					"C11111111": {{Ts: "100.001000"}},
				}},
			},
		},
		messagesByTimestamp: map[string]slack.Message{
			"100.001000": {Msg: slack.Msg{User: "U111AAAA1", Timestamp: "100.001000", Text: "<@U222BBBB2> gotcha"}},
		},
	}
	c := newTestClassifier(source, nil)

	spot, ok := c.ClassifyFileShared(&slack.FileSharedEvent{FileID: "F11111111"})

	if assert.True(t, ok) {
		assert.Equal(t, "U111AAAA1", spot.Poster)
		assert.Equal(t, []string{"U222BBBB2"}, spot.Targets)
		assert.Equal(t, "100.001000", spot.DedupKey)
	}
}

func TestClassifyFileSharedRejectsNonImage(t *testing.T) {
	source := &fakeEventSource{
		files: map[string]*slack.File{
			"F11111111": {ID: "F11111111", User: "U111AAAA1", Mimetype: "text/plain"},
		},
	}
	c := newTestClassifier(source, nil)

	_, ok := c.ClassifyFileShared(&slack.FileSharedEvent{FileID: "F11111111"})
	assert.False(t, ok)
}

func TestClassifyFileSharedParksMentionlessShare(t *testing.T) {
	source := &fakeEventSource{
		files: map[string]*slack.File{
			"F11111111": {
				ID:       "F11111111",
				User:     "U111AAAA1",
				Mimetype: "image/png",
				Shares: slack.Share{Public: map[string][]slack.ShareFileInfo{
					"C11111111": {{Ts: "100.001000"}},
				}},
			},
		},
		messagesByTimestamp: map[string]slack.Message{
			"100.001000": {Msg: slack.Msg{User: "U111AAAA1", Timestamp: "100.001000", Text: "look at this"}},
		},
	}
	c := newTestClassifier(source, nil)

	_, ok := c.ClassifyFileShared(&slack.FileSharedEvent{FileID: "F11111111"})
	assert.False(t, ok)

	// The parked share completes when the mentions arrive
	spot, ok := c.CompletePending("C11111111", []string{"U222BBBB2"})
	if assert.True(t, ok) {
		assert.Equal(t, "U111AAAA1", spot.Poster)
		assert.Equal(t, []string{"U222BBBB2"}, spot.Targets)
		assert.Equal(t, "100.001000", spot.DedupKey)
	}
}

func TestCompletePendingIgnoresMentionlessMessages(t *testing.T) {
	c := newTestClassifier(&fakeEventSource{}, nil)

	_, ok := c.CompletePending("C11111111", []string{})
	assert.False(t, ok)
}

func TestAdjacencyMatchingDisabledByDefault(t *testing.T) {
	source := &fakeEventSource{
		windowMessages: []slack.Message{
			{Msg: slack.Msg{User: "U111AAAA1", Timestamp: "100.500000", Text: "<@U222BBBB2>"}},
		},
	}
	c := newTestClassifier(source, nil)

	_, ok := c.ClassifyMessage(imageMessageEvent("U111AAAA1", "C11111111", "100.001000", "no mention here"))
	assert.False(t, ok)
	assert.Equal(t, 0, source.historyCalls)
}

func TestAdjacencyMatchingFindsNeighboringMention(t *testing.T) {
	source := &fakeEventSource{
		windowMessages: []slack.Message{
			{Msg: slack.Msg{User: "U111AAAA1", Timestamp: "100.500000", Text: "<@U222BBBB2> right there"}},
			{Msg: slack.Msg{User: "U999ZZZZ9", Timestamp: "100.600000", Text: "<@U333CCCC3> unrelated"}},
		},
	}
	c := newTestClassifier(source, map[string]interface{}{config.AdjacencyMatchingKey: true})

	spot, ok := c.ClassifyMessage(imageMessageEvent("U111AAAA1", "C11111111", "100.001000", "no mention here"))

	if assert.True(t, ok) {
		assert.Equal(t, "U111AAAA1", spot.Poster)
		assert.Equal(t, []string{"U222BBBB2"}, spot.Targets)
		assert.Equal(t, "100.001000", spot.DedupKey)
	}
}

func TestOffsetTimestamp(t *testing.T) {
	assert.Equal(t, "101.001700", offsetTimestamp("100.001700", 1.))
	assert.Equal(t, "99.001700", offsetTimestamp("100.001700", -1.))
	assert.Equal(t, "garbage", offsetTimestamp("garbage", 1.))
}
