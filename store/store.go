package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/memwallet/memwallet/internal/profile"
	"github.com/memwallet/memwallet/store/cache"
)

// Store provides database access to all raw objects. Card text is encrypted
// before it reaches the driver and decrypted on the way out, so drivers only
// ever see sealed tokens.
type Store struct {
	profile *profile.Profile
	driver  Driver
	secret  *SecretBox

	// cardCache holds decrypted persona card lists keyed by persona.
	cardCache *cache.Cache
}

// New creates a new instance of Store. When the profile carries a secret
// key, card text is encrypted at rest; without one the store runs
// plaintext, which is only intended for tests.
func New(driver Driver, serverProfile *profile.Profile) (*Store, error) {
	var secret *SecretBox
	if serverProfile.SecretKey != "" {
		box, err := NewSecretBox(serverProfile.SecretKey)
		if err != nil {
			return nil, errors.Wrap(err, "failed to initialize card encryption")
		}
		secret = box
	} else {
		slog.Warn("card store is running without encryption at rest")
	}

	return &Store{
		driver:  driver,
		profile: serverProfile,
		secret:  secret,
		cardCache: cache.New(cache.Config{
			DefaultTTL:      10 * time.Minute,
			CleanupInterval: 5 * time.Minute,
			MaxItems:        100,
		}),
	}, nil
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	s.cardCache.Close()
	return s.driver.Close()
}

// CreateCard persists a card, assigning an id and defaults for any
// unset fields.
func (s *Store) CreateCard(ctx context.Context, create *Card) (*Card, error) {
	if create.ID == "" {
		create.ID = NewCardID()
	}
	if create.Persona == "" {
		create.Persona = s.profile.Persona
	}
	if create.Priority == "" {
		create.Priority = CardPrioritySoft
	}
	if create.Domains == nil {
		create.Domains = []string{}
	}
	if create.Tags == nil {
		create.Tags = []string{}
	}
	now := time.Now().Unix()
	if create.CreatedTs == 0 {
		create.CreatedTs = now
	}
	create.UpdatedTs = create.CreatedTs

	if !create.Valid() {
		return nil, errors.Errorf("card is missing required fields: id=%q type=%q", create.ID, create.Type)
	}

	sealed := *create
	text, err := s.sealText(create.Text)
	if err != nil {
		return nil, err
	}
	sealed.Text = text

	if _, err := s.driver.CreateCard(ctx, &sealed); err != nil {
		return nil, err
	}
	s.invalidatePersona(create.Persona)
	return create, nil
}

// ListCards returns decrypted cards matching find, in stable repository
// order (creation order). Rows that cannot be decrypted or fail validation
// are skipped with a warning rather than failing the read.
func (s *Store) ListCards(ctx context.Context, find *FindCard) ([]*Card, error) {
	if key, cacheable := cacheKeyForFind(find); cacheable {
		if v, ok := s.cardCache.Get(key); ok {
			return v.([]*Card), nil
		}
	}

	rows, err := s.driver.ListCards(ctx, find)
	if err != nil {
		return nil, err
	}

	list := make([]*Card, 0, len(rows))
	for _, row := range rows {
		text, err := s.openText(row.Text)
		if err != nil {
			slog.Warn("skipping undecryptable card", slog.String("card_id", row.ID), slog.String("error", err.Error()))
			continue
		}
		row.Text = text
		if !row.Valid() {
			slog.Warn("skipping malformed card", slog.String("card_id", row.ID))
			continue
		}
		list = append(list, row)
	}

	if key, cacheable := cacheKeyForFind(find); cacheable {
		s.cardCache.Set(key, list)
	}
	return list, nil
}

// GetCard returns a single card by id, or nil when absent.
func (s *Store) GetCard(ctx context.Context, id string) (*Card, error) {
	list, err := s.ListCards(ctx, &FindCard{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// UpdateCard applies an in-place update.
func (s *Store) UpdateCard(ctx context.Context, update *UpdateCard) error {
	if update.ID == "" {
		return errors.New("card id is required")
	}
	if update.UpdatedTs == 0 {
		update.UpdatedTs = time.Now().Unix()
	}
	if update.Text != nil {
		text, err := s.sealText(*update.Text)
		if err != nil {
			return err
		}
		sealed := *update
		sealed.Text = &text
		update = &sealed
	}
	if err := s.driver.UpdateCard(ctx, update); err != nil {
		return err
	}
	s.invalidateAll()
	return nil
}

// DeleteCard removes cards matching delete.
func (s *Store) DeleteCard(ctx context.Context, delete *DeleteCard) error {
	if err := s.driver.DeleteCard(ctx, delete); err != nil {
		return err
	}
	if delete.Persona != nil {
		s.invalidatePersona(*delete.Persona)
	} else {
		s.invalidateAll()
	}
	return nil
}

// FindRelatedCardIDsByTags surfaces ids of cards sharing tags with the
// query set. Supplementary; callers treat errors as an empty result.
func (s *Store) FindRelatedCardIDsByTags(ctx context.Context, tags []string, persona string, limit int) ([]string, error) {
	return s.driver.FindRelatedCardIDsByTags(ctx, tags, persona, limit)
}

// UpsertCardEmbedding stores the embedding vector for a card.
func (s *Store) UpsertCardEmbedding(ctx context.Context, embedding *CardEmbedding) (*CardEmbedding, error) {
	return s.driver.UpsertCardEmbedding(ctx, embedding)
}

// DeleteCardEmbedding removes a card's embedding.
func (s *Store) DeleteCardEmbedding(ctx context.Context, cardID string) error {
	return s.driver.DeleteCardEmbedding(ctx, cardID)
}

// FindCardsWithoutEmbedding returns decrypted cards lacking an embedding
// for the given model.
func (s *Store) FindCardsWithoutEmbedding(ctx context.Context, find *FindCardsWithoutEmbedding) ([]*Card, error) {
	rows, err := s.driver.FindCardsWithoutEmbedding(ctx, find)
	if err != nil {
		return nil, err
	}
	list := make([]*Card, 0, len(rows))
	for _, row := range rows {
		text, err := s.openText(row.Text)
		if err != nil {
			slog.Warn("skipping undecryptable card", slog.String("card_id", row.ID), slog.String("error", err.Error()))
			continue
		}
		row.Text = text
		list = append(list, row)
	}
	return list, nil
}

// VectorSearch runs a similarity search and decrypts the matched cards.
func (s *Store) VectorSearch(ctx context.Context, opts *VectorSearchOptions) ([]*CardWithScore, error) {
	results, err := s.driver.VectorSearch(ctx, opts)
	if err != nil {
		return nil, err
	}
	list := make([]*CardWithScore, 0, len(results))
	for _, result := range results {
		text, err := s.openText(result.Card.Text)
		if err != nil {
			slog.Warn("skipping undecryptable card", slog.String("card_id", result.Card.ID), slog.String("error", err.Error()))
			continue
		}
		result.Card.Text = text
		list = append(list, result)
	}
	return list, nil
}

func (s *Store) sealText(text string) (string, error) {
	if s.secret == nil {
		return text, nil
	}
	sealed, err := s.secret.Seal(text)
	if err != nil {
		return "", errors.Wrap(err, "failed to encrypt card text")
	}
	return sealed, nil
}

func (s *Store) openText(text string) (string, error) {
	if s.secret == nil {
		return text, nil
	}
	return s.secret.Open(text)
}

// cacheKeyForFind returns a cache key for persona-only lookups, the hot
// path of pack building. Anything more specific goes to the driver.
func cacheKeyForFind(find *FindCard) (string, bool) {
	if find == nil || find.Persona == nil {
		return "", false
	}
	if find.ID != nil || len(find.IDs) > 0 || find.Domain != nil || find.Type != nil || find.Tag != nil || find.Limit != 0 || find.Offset != 0 {
		return "", false
	}
	return "cards:" + *find.Persona, true
}

func (s *Store) invalidatePersona(persona string) {
	s.cardCache.Delete("cards:" + persona)
}

func (s *Store) invalidateAll() {
	// Updates and blanket deletes do not know the persona; drop everything.
	s.cardCache.Flush()
}
