package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/medipoint/scheduler-api/internal/config"
	"github.com/medipoint/scheduler-api/internal/model"
)

// Service is the identity oracle: it resolves a bearer token into the Actor
// used by the scheduling engine. Token issuance lives elsewhere.
type Service interface {
	Authenticate(ctx context.Context, token string) (*model.Actor, error)
}

type Claims struct {
	jwt.RegisteredClaims
	Role      string `json:"role"`
	PatientID string `json:"patient_id,omitempty"`
	DoctorID  string `json:"doctor_id,omitempty"`
}

type service struct {
	secret []byte
}

func NewService(cfg config.JWTConfig) Service {
	return &service{secret: []byte(cfg.Secret)}
}

func (s *service) Authenticate(_ context.Context, tokenString string) (*model.Actor, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject claim: %w", err)
	}

	actor := &model.Actor{
		UserID: userID,
		Role:   model.Role(claims.Role),
	}

	switch actor.Role {
	case model.RolePatient:
		if actor.PatientID, err = uuid.Parse(claims.PatientID); err != nil {
			return nil, fmt.Errorf("invalid patient_id claim: %w", err)
		}
	case model.RoleDoctor:
		if actor.DoctorID, err = uuid.Parse(claims.DoctorID); err != nil {
			return nil, fmt.Errorf("invalid doctor_id claim: %w", err)
		}
	case model.RoleAdmin:
	default:
		return nil, fmt.Errorf("unrecognized role %q", claims.Role)
	}

	return actor, nil
}
