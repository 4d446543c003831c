package handler

import "github.com/civichub/society-api/internal/core/domain"

// --- Domain → Response ---

func toComplaintResponse(c *domain.Complaint) complaintResponse {
	return complaintResponse{
		ID:        c.ID,
		UserID:    c.OwnerID,
		Issue:     c.Issue,
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toComplaintList(list []*domain.Complaint) []complaintResponse {
	out := make([]complaintResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toComplaintResponse(c))
	}
	return out
}

func toComplaintViewList(views []domain.ComplaintView) []complaintResponse {
	out := make([]complaintResponse, 0, len(views))
	for i := range views {
		resp := toComplaintResponse(&views[i].Complaint)
		if owner := views[i].Owner; owner != nil {
			resp.User = &complaintOwnerResponse{ID: owner.ID, Name: owner.Name, Email: owner.Email}
		}
		out = append(out, resp)
	}
	return out
}

func toNotificationList(list []*domain.Notification) []notificationResponse {
	out := make([]notificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, notificationResponse{
			ID:        n.ID,
			UserID:    n.RecipientID,
			Title:     n.Title,
			Message:   n.Message,
			Category:  string(n.Category),
			IsRead:    n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	return out
}
