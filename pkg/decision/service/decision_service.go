package service

import "canaswarm/entities"

// DecisionService turns zone recommendations into a field decision.
// Implementations hold no state between calls; rec is only read.
type DecisionService interface {
	Generate(rec *entities.FieldRecommendations) *entities.FieldDecision
}
