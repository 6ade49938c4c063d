package spotted

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/marcsantiago/gocron"
	"github.com/nlopes/slack"
	"github.com/spf13/viper"
	"github.com/spottedbot/spotted/config"
	"github.com/spottedbot/spotted/schedule"
	"github.com/spottedbot/spotted/store"
	"go.opentelemetry.io/otel/api/global"
)

// Spotted represents the spotted game engine: the event loop and the
// classify -> claim -> reconcile -> acknowledge pipeline
type Spotted struct {
	name   string
	config *viper.Viper
	log    *sLogger

	classifier *Classifier
	ledger     *Ledger
	reconciler *Reconciler
	storer     store.ScoreStorer

	sender         MessageSender
	reactor        EmojiReactor
	userInfoFinder UserInfoFinder

	selfID   string
	selfName string

	*instrumenter
}

// Option defines an option for the Spotted engine, mostly used to inject
// slack api alternatives in tests
type Option func(*Spotted)

// OptionLog sets the logger
func OptionLog(logger *log.Logger) Option {
	return func(s *Spotted) {
		s.log.logger = logger
	}
}

// OptionEventSource sets the event source used by the classifier for history
// and file info lookups
func OptionEventSource(source EventSource) Option {
	return func(s *Spotted) {
		s.classifier.source = source
	}
}

// OptionMessageSender sets the sender used for acknowledgement replies
func OptionMessageSender(sender MessageSender) Option {
	return func(s *Spotted) {
		s.sender = sender
	}
}

// OptionEmojiReactor sets the reactor used to react to scored spots
func OptionEmojiReactor(reactor EmojiReactor) Option {
	return func(s *Spotted) {
		s.reactor = reactor
	}
}

// OptionUserInfoFinder sets the user info finder used for display names
func OptionUserInfoFinder(userInfoFinder UserInfoFinder) Option {
	return func(s *Spotted) {
		s.userInfoFinder = userInfoFinder
		s.reconciler.userInfoFinder = userInfoFinder
	}
}

// New creates a new spotted engine on top of the given score store
func New(name string, v *viper.Viper, storer store.ScoreStorer, options ...Option) (s *Spotted, err error) {
	s = new(Spotted)
	s.name = name
	s.config = v
	s.storer = storer
	s.log = NewSLogger(log.New(os.Stdout, name+": ", log.Lshortfile|log.LstdFlags), v.GetBool(config.DebugKey))

	s.ledger, err = NewLedger(v.GetInt(config.LedgerSizeKey))
	if err != nil {
		return nil, err
	}

	pending := newPendingShares(time.Duration(v.GetInt(config.FileShareWindowSecondsKey)) * time.Second)
	s.classifier = newClassifier(v, nil, pending, s.log)
	s.reconciler = newReconciler(storer, nil, DefaultRetryPolicy(), s.log)
	s.instrumenter = newInstrumenter(name, global.MeterProvider().Meter(name))

	for _, option := range options {
		option(s)
	}

	return s, nil
}

// Run starts the spotted engine and loops until the process is interrupted or
// slack rejects our credentials
func (s *Spotted) Run() (err error) {
	api := slack.New(
		s.config.GetString(config.TokenKey),
		slack.OptionDebug(s.config.GetBool(config.DebugKey)),
		slack.OptionLog(log.New(os.Stdout, "slack: ", log.Lshortfile|log.LstdFlags)),
	)

	if s.classifier.source == nil {
		s.classifier.source = api
	}

	if s.sender == nil {
		s.sender = api
	}

	if s.reactor == nil {
		s.reactor = api
	}

	if s.userInfoFinder == nil {
		if s.userInfoFinder, err = NewCachingUserInfoFinder(s.config, api, s.log); err != nil {
			return err
		}

		s.reconciler.userInfoFinder = s.userInfoFinder
	}

	rtm := api.NewRTM()
	go rtm.ManageConnection()
	go s.watchForTerminationSignalToAbort(rtm)

	if err = s.startDigestScheduler(); err != nil {
		return err
	}

	for msg := range rtm.IncomingEvents {
		switch e := msg.Data.(type) {
		case *slack.ConnectedEvent:
			s.log.Printf("Connected as [%s] (connection count: %d)", e.Info.User.Name, e.ConnectionCount)
			s.cacheSelfIdentity(rtm)

		case *slack.MessageEvent:
			s.coreMetrics.eventsSeen[messageEventKind].Add(context.Background(), 1)
			go s.handleMessageEvent(e)

		case *slack.FileSharedEvent:
			s.coreMetrics.eventsSeen[fileSharedEventKind].Add(context.Background(), 1)
			go s.handleFileSharedEvent(e)

		case *slack.LatencyReport:
			s.coreMetrics.slackLatencyMillis.Set(context.Background(), e.Value.Milliseconds())

		case *slack.RTMError:
			s.log.Printf("Error: %s", e.Error())

		case *slack.InvalidAuthEvent:
			return fmt.Errorf("invalid slack credentials")

		default:
			// Ignoring other event types
		}
	}

	return nil
}

// watchForTerminationSignalToAbort waits for a SIGTERM or SIGINT and closes the rtm's IncomingEvents channel to finish
// the main Run() loop and terminate cleanly. Note that this is meant to run in a go routine given that this is blocking
func (s *Spotted) watchForTerminationSignalToAbort(rtm *slack.RTM) {
	tSignals := make(chan os.Signal, 1)
	// Register to be notified of termination signals so we can abort
	signal.Notify(tSignals, syscall.SIGINT, syscall.SIGTERM)
	sig := <-tSignals

	s.log.Debugf("Received termination signal [%s], closing RTM's incoming events channel to terminate processing", sig)
	close(rtm.IncomingEvents)
}

// cacheSelfIdentity gets "our" identity and keeps the selfID and selfName to avoid having to look it up every time
func (s *Spotted) cacheSelfIdentity(rtm *slack.RTM) {
	s.selfID = rtm.GetInfo().User.ID
	s.selfName = rtm.GetInfo().User.Name

	s.log.Debugf("Caching self id [%s] and self name [%s]", s.selfID, s.selfName)
}

// handleMessageEvent classifies one message event and scores it if it's a
// genuine spot. Handling runs in its own goroutine so the classifier's
// bounded attachment wait suspends only this event, never the event loop or
// the ledger
func (s *Spotted) handleMessageEvent(ev *slack.MessageEvent) {
	if ev.User == s.selfID || ev.BotID != "" {
		s.log.Debugf("Ignoring message [%s] from ourselves or a bot", ev.Timestamp)
		return
	}

	if spot, ok := s.classifier.ClassifyMessage(ev); ok {
		s.scoreSpot(spot)
		return
	}

	// A mention-only message may complete a recent mention-less file share
	// in the same channel
	if ev.SubType == "" && len(ev.Files) == 0 {
		if spot, ok := s.classifier.CompletePending(ev.Channel, ExtractMentions(ev.Text)); ok {
			s.scoreSpot(spot)
		}
	}
}

// handleFileSharedEvent classifies one file_shared event and scores it if it
// resolves to a genuine spot
func (s *Spotted) handleFileSharedEvent(ev *slack.FileSharedEvent) {
	if spot, ok := s.classifier.ClassifyFileShared(ev); ok {
		s.scoreSpot(spot)
	}
}

// scoreSpot claims the spot's dedup key and, as first claimant, reconciles
// and acknowledges it. Duplicates are the expected steady-state outcome of
// slack's multi-channel delivery and are dropped silently
func (s *Spotted) scoreSpot(spot *Spot) {
	if spot.Poster == s.selfID {
		return
	}

	if !s.ledger.Claim(spot.DedupKey) {
		s.log.Debugf("Duplicate delivery of spot [%s] dropped", spot.DedupKey)
		s.coreMetrics.duplicatesDropped.Add(context.Background(), 1)

		return
	}

	s.coreMetrics.spotsScored.Add(context.Background(), 1)

	var res ReconciliationResult
	d := measure(func() {
		res = s.reconciler.Reconcile(spot)
	})

	s.coreMetrics.reconcileLatencyMillis.Record(context.Background(), d.Milliseconds())
	if len(res.Failed) > 0 {
		s.coreMetrics.mutationFailures.Add(context.Background(), int64(len(res.Failed)))
	}

	s.acknowledgeSpot(spot, res)
}

// acknowledgeSpot posts the reaction and summary reply for a reconciled
// spot. Both are best-effort: a failure here is logged and swallowed, never
// propagated back into the scoring path
func (s *Spotted) acknowledgeSpot(spot *Spot, res ReconciliationResult) {
	if s.reactor != nil && !res.FullyFailed() {
		if err := s.reactor.AddReaction("camera_with_flash", slack.NewRefToMessage(spot.Channel, spot.DedupKey)); err != nil {
			s.log.Debugf("Error reacting to spot [%s]: %v", spot.DedupKey, err)
		}
	}

	if s.sender == nil {
		return
	}

	summary := s.reconciler.Summary(spot, res)
	if _, _, err := s.sender.PostMessage(spot.Channel, slack.MsgOptionText(summary, false), slack.MsgOptionTS(spot.DedupKey)); err != nil {
		s.log.Printf("Error posting summary for spot [%s]: %v", spot.DedupKey, err)
	}
}

// startDigestScheduler schedules the recurring leaderboard digest, if
// configured
func (s *Spotted) startDigestScheduler() (err error) {
	digestConf := config.GetDigest(s.config)

	channel := digestConf[config.DigestChannelKey]
	if channel == "" {
		s.log.Debugf("No digest channel configured, skipping digest scheduling")
		return nil
	}

	d := NewDigest(s.storer, s.sender, channel, digestCount(digestConf), s.log)

	timeLoc, err := config.GetTimeLocation(s.config)
	if err != nil {
		return err
	}

	def := schedule.Definition{Weekday: digestConf[config.DigestWeekdayKey], AtTime: digestConf[config.DigestAtTimeKey]}

	go s.runDigestScheduler(timeLoc, def, d)

	return nil
}

// runDigestScheduler registers the digest job and starts the scheduler. Meant
// to run in a go routine given that the scheduler is blocking
func (s *Spotted) runDigestScheduler(timeLoc *time.Location, def schedule.Definition, d *Digest) {
	gocron.ChangeLoc(timeLoc)
	sc := gocron.NewScheduler()

	j, err := schedule.NewJob(sc, def)
	if err != nil {
		s.log.Printf("Error scheduling digest [%s]: %v", def, err)
		return
	}

	s.log.Debugf("Scheduling digest job [%s] on channel", def)
	j.Do(d.Post)

	_, t := sc.NextRun()
	s.log.Debugf("Starting digest scheduler with first run at [%s]", t)

	<-sc.Start()
}
