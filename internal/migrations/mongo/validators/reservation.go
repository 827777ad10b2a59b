package validators

import "go.mongodb.org/mongo-driver/bson"

var ReservationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"unit_id", "start_utc", "end_utc", "user_id", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "objectId"},
			"unit_id":    bson.M{"bsonType": "string", "minLength": 1},
			"start_utc":  bson.M{"bsonType": "date"},
			"end_utc":    bson.M{"bsonType": "date"},
			"user_id":    bson.M{"bsonType": "string", "minLength": 1},
			"notes":      bson.M{"bsonType": "string", "maxLength": 240},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}

var UnitLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "owner", "expires_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "string"},
			"owner":      bson.M{"bsonType": "string"},
			"expires_at": bson.M{"bsonType": "date"},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
