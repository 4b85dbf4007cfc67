package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ActivityType string

const (
	ActivityAddMember        ActivityType = "AddMember"
	ActivityRemoveMember     ActivityType = "RemoveMember"
	ActivityUpdateProject    ActivityType = "UpdateProject"
	ActivityCreateSection    ActivityType = "CreateSection"
	ActivityDeleteSection    ActivityType = "DeleteSection"
	ActivityCreateTask       ActivityType = "CreateTask"
	ActivityUpdateTask       ActivityType = "UpdateTask"
	ActivityDeleteTask       ActivityType = "DeleteTask"
	ActivityChangeTaskStatus ActivityType = "ChangeTaskStatus"
	ActivityAssignTask       ActivityType = "AssignTask"
	ActivityAddAttachment    ActivityType = "AddAttachment"
	ActivityAddComment       ActivityType = "AddComment"
)

// ProjectActivity is one entry of a project's activity feed. Ids referring to
// relational rows are stored as UUID strings.
type ProjectActivity struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProjectID    string             `json:"project_id" bson:"projectId"`
	ActorID      string             `json:"actor_id" bson:"actorId"`
	ActivityType ActivityType       `json:"activity_type" bson:"activityType"`
	TaskID       string             `json:"task_id,omitempty" bson:"taskId,omitempty"`
	MemberID     string             `json:"member_id,omitempty" bson:"memberId,omitempty"`
	Details      string             `json:"details" bson:"details"`
	Timestamp    time.Time          `json:"timestamp" bson:"timestamp"`
}
