package queue

import (
	"github.com/maheshrc27/adwola-api/internal/service"
)

// Queue runs the generation phase of briefs created in async mode.
type Queue struct {
	bs service.BriefService
}

func NewQueue(bs service.BriefService) *Queue {
	return &Queue{bs: bs}
}

const TaskTypeGenerateBrief = "brief:generate"

type GenerateBriefPayload struct {
	BriefID string `json:"brief_id"`
}
