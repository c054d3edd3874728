// Package members resolves Discord user ids against the two member
// directories: the community guild database and the bot's own member
// database. Lookups are cached per id for a short TTL, so role and
// suspension changes can lag by up to that window.
package members

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/poketwo/forms/internal/app/system/memcache"
	"github.com/poketwo/forms/internal/app/system/timeouts"
	"github.com/poketwo/forms/internal/domain/models"
)

// DefaultTTL bounds the staleness of directory lookups.
const DefaultTTL = 60 * time.Second

// Store reads member projections. The cache is injected so the process has
// exactly one, owned by bootstrap.
type Store struct {
	community *mongo.Collection
	poketwo   *mongo.Collection
	cache     *memcache.Cache
}

// New builds a Store over the community guild database and the bot's
// member database.
func New(communityDB, poketwoDB *mongo.Database, cache *memcache.Cache) *Store {
	return &Store{
		community: communityDB.Collection("member"),
		poketwo:   poketwoDB.Collection("member"),
		cache:     cache,
	}
}

// FetchMember returns the guild-member projection for a user id, or
// (nil, nil) when the user is not in the directory. Absence is cached too:
// a non-member stays a non-member for the TTL.
func (s *Store) FetchMember(ctx context.Context, id int64) (*models.Member, error) {
	key := fmt.Sprintf("member:%d", id)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*models.Member), nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var m models.Member
	err := s.community.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		s.cache.Set(key, (*models.Member)(nil))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, &m)
	return &m, nil
}

// FetchPoketwoMember returns the bot-side member projection for a user id,
// or (nil, nil) when the user is unknown to the bot.
func (s *Store) FetchPoketwoMember(ctx context.Context, id int64) (*models.PoketwoMember, error) {
	key := fmt.Sprintf("poketwo_member:%d", id)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*models.PoketwoMember), nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var m models.PoketwoMember
	err := s.poketwo.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		s.cache.Set(key, (*models.PoketwoMember)(nil))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, &m)
	return &m, nil
}
