// Package matching finds and ranks language-exchange partners.
package matching

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"penpal/backend/internal/config"
	"penpal/backend/internal/models"
	"penpal/backend/internal/storage"
)

// ProfileStore is the storage the Matcher reads from.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	FindReciprocalProfiles(ctx context.Context, excludeUserID string, targetLanguageID, userNativeID uint) ([]models.UserProfile, error)
	FindBroaderProfiles(ctx context.Context, excludeUserID string, targetLanguageID uint) ([]models.UserProfile, error)
	SendersWithMessages(ctx context.Context, userIDs []string) (map[string]bool, error)
}

// Candidate is a ranked partner suggestion.
type Candidate struct {
	Profile models.UserProfile `json:"profile"`
	Score   int                `json:"score"`
}

type Matcher struct {
	store ProfileStore
}

func NewMatcher(store ProfileStore) *Matcher {
	return &Matcher{store: store}
}

// FindPartners returns available partners for userID in the target language.
// Ideal partners are native in the target language and learn the user's
// native language; only when there are none does it fall back to anyone
// native in or learning the target language. A user without a profile has
// no partners.
func (m *Matcher) FindPartners(ctx context.Context, userID string, targetLanguageID uint) ([]models.UserProfile, error) {
	user, err := m.store.GetProfile(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", userID, err)
	}
	return m.findFor(ctx, user, targetLanguageID)
}

func (m *Matcher) findFor(ctx context.Context, user *models.UserProfile, targetLanguageID uint) ([]models.UserProfile, error) {
	if user.NativeLanguageID != nil {
		ideal, err := m.store.FindReciprocalProfiles(ctx, user.UserID, targetLanguageID, *user.NativeLanguageID)
		if err != nil {
			return nil, err
		}
		if len(ideal) > 0 {
			return ideal, nil
		}
	}
	return m.store.FindBroaderProfiles(ctx, user.UserID, targetLanguageID)
}

// Score rates how well candidate suits user, from 0 to 100.
func Score(user, candidate *models.UserProfile, candidateHasMessages bool) int {
	score := 0

	if candidate.NativeLanguageID != nil && user.IsLearning(*candidate.NativeLanguageID) &&
		user.NativeLanguageID != nil && candidate.IsLearning(*user.NativeLanguageID) {
		score += config.ScoreReciprocalExchange
	}
	if user.Proficiency == candidate.Proficiency {
		score += config.ScoreSameProficiency
	}
	if user.IsAvailable && candidate.IsAvailable {
		score += config.ScoreBothAvailable
	}
	if strings.TrimSpace(candidate.Bio) != "" {
		score += config.ScoreHasBio
	}
	if candidateHasMessages {
		score += config.ScoreHasSentMessages
	}

	return min(score, config.MaxMatchScore)
}

// ScoreMatch is Score with the candidate's message history looked up.
func (m *Matcher) ScoreMatch(ctx context.Context, user, candidate *models.UserProfile) (int, error) {
	senders, err := m.store.SendersWithMessages(ctx, []string{candidate.UserID})
	if err != nil {
		return 0, err
	}
	return Score(user, candidate, senders[candidate.UserID]), nil
}

// RankPartners scores every partner FindPartners returns and keeps the best
// config.MaxPartnerResults. Equal scores keep their FindPartners order.
func (m *Matcher) RankPartners(ctx context.Context, userID string, languageID uint) ([]Candidate, error) {
	user, err := m.store.GetProfile(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return []Candidate{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", userID, err)
	}

	partners, err := m.findFor(ctx, user, languageID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(partners))
	for i := range partners {
		ids[i] = partners[i].UserID
	}
	senders, err := m.store.SendersWithMessages(ctx, ids)
	if err != nil {
		return nil, err
	}

	ranked := make([]Candidate, len(partners))
	for i := range partners {
		ranked[i] = Candidate{
			Profile: partners[i],
			Score:   Score(user, &partners[i], senders[partners[i].UserID]),
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > config.MaxPartnerResults {
		ranked = ranked[:config.MaxPartnerResults]
	}

	log.Printf("INFO: Ranked %d partners for user %s in language %d.", len(ranked), userID, languageID)
	return ranked, nil
}
