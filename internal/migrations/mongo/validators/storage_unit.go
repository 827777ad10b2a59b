package validators

import "go.mongodb.org/mongo-driver/bson"

var StorageUnitValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name", "size", "monthly_price", "is_active", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":  bson.M{"bsonType": "objectId"},
			"name": bson.M{"bsonType": "string", "minLength": 1, "maxLength": 120},
			"size": bson.M{"bsonType": "string", "minLength": 1, "maxLength": 60},
			"monthly_price": bson.M{
				"bsonType": bson.A{"long", "int"},
				"minimum":  0,
				"maximum":  99999999,
			},
			"is_active":  bson.M{"bsonType": "bool"},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
