package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rating is embedded in its Home document. There is at most one rating per
// (home, user) pair; a re-submission overwrites stars, comment and timestamp.
type Rating struct {
	User      primitive.ObjectID `bson:"user" json:"user"`
	Stars     int                `bson:"stars" json:"stars"`
	Comment   string             `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// RatingView is a Rating with the author summary populated for responses.
type RatingView struct {
	User      UserSummary `json:"user"`
	Stars     int         `json:"stars"`
	Comment   string      `json:"comment,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

type Home struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Homename    string             `bson:"homename" json:"homename"`
	Price       float64            `bson:"price" json:"price"`
	Description string             `bson:"description" json:"description"`
	Location    string             `bson:"location" json:"location"`
	HostID      primitive.ObjectID `bson:"hostid" json:"hostid"`
	Photo       string             `bson:"photo,omitempty" json:"photo,omitempty"`
	Images      []string           `bson:"images" json:"images"`
	RulesFile   string             `bson:"rules_file,omitempty" json:"rules_file,omitempty"`
	Ratings     []Rating           `bson:"ratings" json:"ratings"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// AverageRating is the arithmetic mean of all star values rounded to one
// decimal place, or 0 when the home has no ratings.
func (h *Home) AverageRating() float64 {
	if len(h.Ratings) == 0 {
		return 0
	}
	total := 0
	for _, r := range h.Ratings {
		total += r.Stars
	}
	avg := float64(total) / float64(len(h.Ratings))
	return math.Round(avg*10) / 10
}

// RatingBy returns the rating left by userID, if any.
func (h *Home) RatingBy(userID primitive.ObjectID) (Rating, bool) {
	for _, r := range h.Ratings {
		if r.User == userID {
			return r, true
		}
	}
	return Rating{}, false
}
