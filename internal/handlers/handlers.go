package handlers

import (
	"time"

	"media-stage/internal/feed"
	"media-stage/internal/probe"
	"media-stage/internal/snapshots"
)

// maxProbeBytes caps the body of a probe upload.
const maxProbeBytes = 32 << 20

type Handlers struct {
	session   *feed.Session
	snapshots *snapshots.Cache
	prober    *probe.Prober
	pool      *probe.Pool
	started   time.Time
}

// New creates the HTTP handlers. snapshotCache and prober may be nil, in
// which case their routes answer 503. Without a pool, asynchronous probe
// requests are measured inline.
func New(session *feed.Session, snapshotCache *snapshots.Cache, prober *probe.Prober, pool *probe.Pool) *Handlers {
	return &Handlers{
		session:   session,
		snapshots: snapshotCache,
		prober:    prober,
		pool:      pool,
		started:   time.Now(),
	}
}
