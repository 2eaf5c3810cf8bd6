package service

import (
	"time"

	"github.com/scorrilo/budbudbud/internal/models"
	"github.com/scorrilo/budbudbud/pkg/api"
)

// Wire conversions between domain models and api messages.

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		Id:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		EmailVerified: u.EmailVerified,
		FirstLogin:    u.FirstLogin,
		CreatedAt:     u.CreatedAt,
	}
}

func toAPIGroup(d *models.GroupDetail) *api.Group {
	group := &api.Group{
		Id:        d.ID,
		Name:      d.Name,
		CreatedAt: d.CreatedAt,
		Members:   make([]api.Member, len(d.Members)),
	}
	for i, m := range d.Members {
		group.Members[i] = api.Member{
			UserId: m.UserID,
			Email:  m.UserEmail,
			Name:   m.Name,
			Admin:  m.Admin,
		}
	}
	for _, msg := range d.Messages {
		group.Messages = append(group.Messages, api.Message{
			Id:        msg.ID,
			AuthorId:  msg.AuthorID,
			Text:      msg.Text,
			CreatedAt: msg.CreatedAt,
		})
	}
	return group
}

func toAPIMeet(m *models.Meet) *api.Meet {
	meet := &api.Meet{
		Id:        m.ID,
		GroupId:   m.GroupID,
		Day:       time.Unix(m.Day, 0).UTC(),
		Validated: m.Validated,
	}
	if m.PlaceID != nil {
		meet.PlaceId = *m.PlaceID
	}
	for _, v := range m.Votes {
		vote := api.Vote{
			UserId:   v.UserID,
			UserName: v.UserName,
		}
		if v.Place != nil {
			vote.Place = &api.Place{Id: v.Place.ID, Address: v.Place.Address}
		}
		meet.Votes = append(meet.Votes, vote)
	}
	return meet
}
