package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Activity kinds recorded against a project.
const (
	ActivityProjectCreated = "project.created"
	ActivityFileCreated    = "file.created"
	ActivityFileUpdated    = "file.updated"
)

// Activity is a single project event stored in MongoDB.
type Activity struct {
	ID        primitive.ObjectID `json:"id"         bson:"_id,omitempty"`
	ProjectID int64              `json:"project_id" bson:"project_id"`
	Kind      string             `json:"kind"       bson:"kind"`
	UserID    int64              `json:"user_id"    bson:"user_id"`
	FileID    int64              `json:"file_id"    bson:"file_id,omitempty"`
	Summary   string             `json:"summary"    bson:"summary"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}
