package handler

import (
	job "github.com/Marco3041/linkedin-clone/internal/modules/job/service"
	"github.com/Marco3041/linkedin-clone/pkg/response"
	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	service job.JobService
}

func NewJobHandler(service job.JobService) *JobHandler {
	return &JobHandler{service: service}
}

func (h *JobHandler) ListJobs(c *gin.Context) {
	jobs, err := h.service.ListJobs(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.OK(c, jobs)
}

func (h *JobHandler) Apply(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := h.service.ApplyToJob(c.Request.Context(), userID, c.Param("job_id"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Created(c, gin.H{"id": id})
}
