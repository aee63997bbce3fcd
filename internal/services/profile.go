package services

import (
	"sort"
	"time"

	"magpulse/internal/store"

	"github.com/google/uuid"
)

const (
	profileLookback      = 30 * 24 * time.Hour
	profileHistoryLimit  = 50
	profileTopTags       = 5
	profileTopCategories = 3
)

// UserInterestProfile is an ephemeral snapshot of a reader's interests,
// built per recommendation request and discarded afterwards. It is never
// persisted.
type UserInterestProfile struct {
	TagFrequency      map[string]int
	CategoryFrequency map[uuid.UUID]int
	TopTags           []string
	TopCategories     []uuid.UUID
	ExcludedIDs       map[uuid.UUID]struct{}
}

// ProfileService builds interest profiles from reading history.
type ProfileService struct {
	history store.ReadingHistoryRepository
}

// NewProfileService creates a new profile service
func NewProfileService(history store.ReadingHistoryRepository) *ProfileService {
	return &ProfileService{history: history}
}

// BuildProfile tallies tags and categories across the user's 50 most recent
// reads in the last 30 days. Every read post id lands in ExcludedIDs so it
// is never re-recommended.
func (ps *ProfileService) BuildProfile(userID uuid.UUID) (*UserInterestProfile, error) {
	since := time.Now().Add(-profileLookback)
	entries, err := ps.history.RecentReads(userID, since, profileHistoryLimit)
	if err != nil {
		return nil, err
	}

	profile := &UserInterestProfile{
		TagFrequency:      make(map[string]int),
		CategoryFrequency: make(map[uuid.UUID]int),
		ExcludedIDs:       make(map[uuid.UUID]struct{}, len(entries)),
	}

	for _, entry := range entries {
		profile.ExcludedIDs[entry.PostID] = struct{}{}

		for _, tag := range entry.Post.Tags {
			profile.TagFrequency[tag]++
		}
		if entry.Post.CategoryID != nil {
			profile.CategoryFrequency[*entry.Post.CategoryID]++
		}
	}

	profile.TopTags = topTags(profile.TagFrequency, profileTopTags)
	profile.TopCategories = topCategories(profile.CategoryFrequency, profileTopCategories)

	return profile, nil
}

// topTags returns the n most frequent tags, ties broken by tag slug so the
// result is deterministic.
func topTags(frequency map[string]int, n int) []string {
	tags := make([]string, 0, len(frequency))
	for tag := range frequency {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		if frequency[tags[i]] != frequency[tags[j]] {
			return frequency[tags[i]] > frequency[tags[j]]
		}
		return tags[i] < tags[j]
	})
	if len(tags) > n {
		tags = tags[:n]
	}
	return tags
}

// topCategories returns the n most frequent categories, ties broken by id.
func topCategories(frequency map[uuid.UUID]int, n int) []uuid.UUID {
	categories := make([]uuid.UUID, 0, len(frequency))
	for id := range frequency {
		categories = append(categories, id)
	}
	sort.Slice(categories, func(i, j int) bool {
		if frequency[categories[i]] != frequency[categories[j]] {
			return frequency[categories[i]] > frequency[categories[j]]
		}
		return categories[i].String() < categories[j].String()
	})
	if len(categories) > n {
		categories = categories[:n]
	}
	return categories
}
