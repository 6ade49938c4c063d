package spotted

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spottedbot/spotted/store"
)

// ReconciliationResult reports, per affected user, whether their score
// mutation was applied. A user lands in Failed only after the retry policy
// has been exhausted for their mutation
type ReconciliationResult struct {
	Succeeded []string
	Failed    []string
}

// FullyFailed returns true when not a single score mutation went through
func (res ReconciliationResult) FullyFailed() bool {
	return len(res.Succeeded) == 0
}

// Reconciler turns a claimed spot into score store mutations: one credit of
// +1 per target for the poster and one -1 debit per target, each in its own
// failure domain so one failing mutation doesn't abort the rest.
//
// The reconciler never touches the ledger: the claim happened exactly once
// before reconciliation and stands whether or not mutations succeed, so a
// redelivery can't double-apply a partially-failed spot
type Reconciler struct {
	storer         store.ScoreStorer
	userInfoFinder UserInfoFinder
	retry          RetryPolicy
	log            SLogger
}

func newReconciler(storer store.ScoreStorer, userInfoFinder UserInfoFinder, retry RetryPolicy, log SLogger) (r *Reconciler) {
	r = new(Reconciler)
	r.storer = storer
	r.userInfoFinder = userInfoFinder
	r.retry = retry
	r.log = log

	return r
}

// Reconcile applies the spot's score deltas. Display names are resolved
// best-effort beforehand (falling back to the raw id) so a slow or failing
// user info lookup never blocks scoring
func (r *Reconciler) Reconcile(spot *Spot) (res ReconciliationResult) {
	res.Succeeded = make([]string, 0, len(spot.Targets)+1)
	res.Failed = make([]string, 0)

	posterName := displayName(r.userInfoFinder, spot.Poster)
	if err := r.updateScore(spot.Poster, len(spot.Targets), posterName); err != nil {
		r.log.Printf("Error crediting poster [%s] for spot [%s]: %v", spot.Poster, spot.DedupKey, err)
		res.Failed = append(res.Failed, spot.Poster)
	} else {
		res.Succeeded = append(res.Succeeded, spot.Poster)
	}

	for _, target := range spot.Targets {
		targetName := displayName(r.userInfoFinder, target)
		if err := r.updateScore(target, -1, targetName); err != nil {
			r.log.Printf("Error debiting target [%s] for spot [%s]: %v", target, spot.DedupKey, err)
			res.Failed = append(res.Failed, target)
			continue
		}

		res.Succeeded = append(res.Succeeded, target)
	}

	return res
}

// updateScore applies a single score delta under the retry policy
func (r *Reconciler) updateScore(userID string, delta int, name string) (err error) {
	err = r.retry.Do(func() (uerr error) {
		_, uerr = r.storer.UpdateScore(userID, delta, name)
		return uerr
	})

	if err != nil {
		return errors.Wrapf(err, "failed to apply score delta [%d] for [%s]", delta, userID)
	}

	return nil
}

// Summary renders the single user-visible acknowledgement for a reconciled
// spot: totals on success, the failed users on partial failure, an apology
// when nothing could be recorded
func (r *Reconciler) Summary(spot *Spot, res ReconciliationResult) string {
	if res.FullyFailed() {
		return fmt.Sprintf("Sorry <@%s>, I couldn't record that spot. The scoreboard is unreachable so this one won't count.", spot.Poster)
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "<@%s> spotted %s: +%d for <@%s>, -1 each for the spotted.",
		spot.Poster, mentionList(spot.Targets), len(spot.Targets), spot.Poster)

	if spot.Dropped > 0 {
		fmt.Fprintf(&b, "\nOnly the first %d mentions count, %d didn't make the cut.", len(spot.Targets), spot.Dropped)
	}

	if len(res.Failed) > 0 {
		fmt.Fprintf(&b, "\nI couldn't update the score for %s, their totals are unchanged.", mentionList(res.Failed))
	}

	return b.String()
}

// mentionList formats user ids as a comma-separated list of mention tokens
func mentionList(userIDs []string) string {
	mentions := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		mentions = append(mentions, fmt.Sprintf("<@%s>", id))
	}

	return strings.Join(mentions, ", ")
}
