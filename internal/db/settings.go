package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	model "github.com/UmarEjaz/AestheTech-sub001/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// One settings document, upserted in place
const settingsDocId = "loyalty-program"

type SettingsDB struct {
	mgo  *mongo.Client
	coll *mongo.Collection
}

func NewSettingsDB() (*SettingsDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mng := os.Getenv("SALON_MONGO")
	if mng == "" {
		return nil, fmt.Errorf("env SALON_MONGO is not set")
	}

	opts := options.Client().ApplyURI("mongodb://" + mng)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	err = client.Ping(ctx, nil)
	if err != nil {
		return nil, err
	}
	db := client.Database("salonDB")
	coll := db.Collection("settings")

	return &SettingsDB{client, coll}, nil
}

type settingsDoc struct {
	ID       string         `bson:"_id"`
	Settings model.Settings `bson:"settings"`
}

func (s *SettingsDB) Get(ctx context.Context) (model.Settings, error) {
	var doc settingsDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": settingsDocId}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return DefaultSettings(), nil
		}
		return model.Settings{}, err
	}
	return doc.Settings, nil
}

// Save validates before writing: the engines rely on the stored snapshot
// being internally consistent and never re-check it on read.
func (s *SettingsDB) Save(ctx context.Context, settings model.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	doc := settingsDoc{ID: settingsDocId, Settings: settings}
	opts := options.Replace().SetUpsert(true)
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": settingsDocId}, doc, opts)
	return err
}

func DefaultSettings() model.Settings {
	return model.Settings{
		GoldThreshold:         500,
		PlatinumThreshold:     1000,
		SilverMultiplier:      1.0,
		GoldMultiplier:        1.5,
		PlatinumMultiplier:    2.0,
		PointsPerCurrencyUnit: 1.0,
		RedemptionRateCents:   5,
		TaxRateBps:            0,
		PointsExpiryEnabled:   false,
		PointsExpiryMonths:    12,
		BirthdayBonusEnabled:  false,
		BirthdayBonusPoints:   100,
		Timezone:              "UTC",
		NeverEndHorizonMonths: 3,
	}
}
