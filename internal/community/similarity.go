// Package community ranks peers within a segment and summarizes what a
// segment's members report.
package community

import (
	"io"
	"log/slog"
	"slices"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/nutriverse/nutribot/internal/profile"
)

// Similarity weights.
const (
	conditionWeight = 0.4
	ageGroupWeight  = 0.3
	dietWeight      = 0.3
)

// MaxPeerRecommendations caps the recommendations attached to a peer.
const MaxPeerRecommendations = 3

// Directory is the read side of the profile store.
type Directory interface {
	Get(userID string) (profile.Profile, bool)
	Members(segment string) []profile.Profile
}

// Peer is one ranked, anonymized peer.
type Peer struct {
	PeerID           string   `json:"peer_id"`
	Score            float64  `json:"similarity_score"`
	Segment          string   `json:"segment"`
	SharedConditions []string `json:"common_conditions"`
	Recommendations  []string `json:"successful_recommendations"`
}

// SimilarityEngine ranks same-segment peers for a user.
type SimilarityEngine struct {
	dir       Directory
	namespace uuid.UUID
	logger    *slog.Logger
}

// NewSimilarityEngine creates an engine over dir. Peer ids are derived from a
// namespace generated per engine, so they are stable for the life of the
// process and never equal the raw user id.
func NewSimilarityEngine(dir Directory, logger *slog.Logger) *SimilarityEngine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &SimilarityEngine{
		dir:       dir,
		namespace: uuid.New(),
		logger:    logger.With("component", "similarity"),
	}
}

// PeerID returns the anonymized identifier used for userID.
func (e *SimilarityEngine) PeerID(userID string) string {
	return uuid.NewSHA1(e.namespace, []byte(userID)).String()
}

// Rank returns up to maxResults peers from the user's segment, best first.
// An unknown user has no peers.
func (e *SimilarityEngine) Rank(userID string, maxResults int) []Peer {
	ref, ok := e.dir.Get(userID)
	if !ok || maxResults <= 0 {
		return nil
	}

	var peers []Peer
	for _, p := range e.dir.Members(ref.Segment) {
		if p.UserID == userID {
			continue
		}
		peers = append(peers, Peer{
			PeerID:           e.PeerID(p.UserID),
			Score:            Score(ref, p),
			Segment:          p.Segment,
			SharedConditions: lo.Intersect(lo.Uniq(p.MedicalConditions), lo.Uniq(ref.MedicalConditions)),
			Recommendations:  p.RecommendationTexts(MaxPeerRecommendations),
		})
	}

	// Stable so equal scores keep the store's insertion order.
	slices.SortStableFunc(peers, func(a, b Peer) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})
	if len(peers) > maxResults {
		peers = peers[:maxResults]
	}

	e.logger.Debug("Ranked peers", "segment", ref.Segment, "returned", len(peers))
	return peers
}

// Score computes the similarity of two profiles in [0,1]. Empty condition or
// diet sets contribute nothing and the remaining weights are not rescaled.
func Score(a, b profile.Profile) float64 {
	score := 0.0
	if len(a.MedicalConditions) > 0 && len(b.MedicalConditions) > 0 {
		score += conditionWeight * jaccard(a.MedicalConditions, b.MedicalConditions)
	}
	if a.AgeGroup == b.AgeGroup {
		score += ageGroupWeight
	}
	if len(a.DietPreferences) > 0 && len(b.DietPreferences) > 0 {
		score += dietWeight * jaccard(a.DietPreferences, b.DietPreferences)
	}
	return min(max(score, 0), 1)
}

func jaccard(a, b []string) float64 {
	union := lo.Union(a, b)
	if len(union) == 0 {
		return 0
	}
	shared := lo.Intersect(lo.Uniq(a), lo.Uniq(b))
	return float64(len(shared)) / float64(len(union))
}
