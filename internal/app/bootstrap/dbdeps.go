// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
//
// The service reads from two Mongo deployments: the community guild
// database (members, submissions) and the Pokétwo product database
// (bot-side member records). When no separate Pokétwo URI is configured
// both pairs point at the same client.
type DBDeps struct {
	CommunityMongoClient   *mongo.Client
	CommunityMongoDatabase *mongo.Database

	PoketwoMongoClient   *mongo.Client
	PoketwoMongoDatabase *mongo.Database
}
