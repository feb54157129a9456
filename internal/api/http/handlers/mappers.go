package handlers

import (
	"github.com/spec-kit/project-desk/internal/api/dto"
	"github.com/spec-kit/project-desk/internal/domain"
	"github.com/spec-kit/project-desk/internal/service"
)

func userResponse(u *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func serviceResponse(s *domain.Service) dto.ServiceResponse {
	return dto.ServiceResponse{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func requestResponse(r *domain.ServiceRequest) dto.ServiceRequestResponse {
	return dto.ServiceRequestResponse{
		ID:          r.ID,
		ServiceID:   r.ServiceID,
		ServiceName: r.ServiceName,
		ClientID:    r.ClientID,
		Message:     r.Message,
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt,
		DecidedAt:   r.DecidedAt,
	}
}

func projectResponse(p *domain.Project) dto.ProjectResponse {
	employees := p.EmployeeIDs
	if employees == nil {
		employees = []string{}
	}
	return dto.ProjectResponse{
		ID:               p.ID,
		ServiceRequestID: p.ServiceRequestID,
		ClientID:         p.ClientID,
		Name:             p.Name,
		Description:      p.Description,
		Status:           string(p.Status),
		EmployeeIDs:      employees,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func messageResponse(m *domain.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Body:        m.Body,
		CreatedAt:   m.CreatedAt,
	}
}

func contactResponse(u *domain.User) dto.ContactResponse {
	return dto.ContactResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  string(u.Role),
	}
}

func statsResponse(o *service.Overview) dto.StatsResponse {
	return dto.StatsResponse{
		TotalEmployees:    o.TotalEmployees,
		TotalClients:      o.TotalClients,
		TotalServices:     o.TotalServices,
		TotalProjects:     o.TotalProjects,
		PendingRequests:   o.PendingRequests,
		ActiveProjects:    o.ActiveProjects,
		CompletedProjects: o.CompletedProjects,
	}
}

func userResponses(users []domain.User) []dto.UserResponse {
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return items
}

func serviceResponses(services []domain.Service) []dto.ServiceResponse {
	items := make([]dto.ServiceResponse, 0, len(services))
	for i := range services {
		items = append(items, serviceResponse(&services[i]))
	}
	return items
}

func requestResponses(requests []domain.ServiceRequest) []dto.ServiceRequestResponse {
	items := make([]dto.ServiceRequestResponse, 0, len(requests))
	for i := range requests {
		items = append(items, requestResponse(&requests[i]))
	}
	return items
}

func projectResponses(projects []domain.Project) []dto.ProjectResponse {
	items := make([]dto.ProjectResponse, 0, len(projects))
	for i := range projects {
		items = append(items, projectResponse(&projects[i]))
	}
	return items
}

func messageResponses(messages []domain.Message) []dto.MessageResponse {
	items := make([]dto.MessageResponse, 0, len(messages))
	for i := range messages {
		items = append(items, messageResponse(&messages[i]))
	}
	return items
}

func contactResponses(users []domain.User) []dto.ContactResponse {
	items := make([]dto.ContactResponse, 0, len(users))
	for i := range users {
		items = append(items, contactResponse(&users[i]))
	}
	return items
}
