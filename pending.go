package spotted

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

// pendingShare is a file share that resolved to an image but carried no
// mentions yet. A mention-only message in the same channel within the window
// completes it into a spot with the file's uploader as poster
type pendingShare struct {
	poster           string
	channel          string
	messageTimestamp string
	fileID           string
}

// pendingShares holds recent mention-less file shares, bounded by a TTL
// window. Expired entries are swept by the underlying cache so a stale share
// can never be matched to an unrelated mention posted much later
type pendingShares struct {
	shares *cache.Cache
}

func newPendingShares(window time.Duration) (p *pendingShares) {
	return &pendingShares{shares: cache.New(window, window)}
}

// add records a pending share. Re-adding the same channel/file pair is a
// no-op so duplicate file_shared deliveries don't refresh the window
func (p *pendingShares) add(share pendingShare) {
	p.shares.Add(pendingShareKey(share.channel, share.fileID), share, cache.DefaultExpiration)
}

// take removes and returns the oldest unexpired pending share for the
// channel, if any
func (p *pendingShares) take(channel string) (share pendingShare, found bool) {
	var oldestKey string

	for key, item := range p.shares.Items() {
		candidate, isShare := item.Object.(pendingShare)
		if !isShare || candidate.channel != channel {
			continue
		}

		if !found || candidate.messageTimestamp < share.messageTimestamp {
			share = candidate
			oldestKey = key
			found = true
		}
	}

	if found {
		p.shares.Delete(oldestKey)
	}

	return share, found
}

func pendingShareKey(channel string, fileID string) string {
	return fmt.Sprintf("%s/%s", channel, fileID)
}
