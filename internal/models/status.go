package models

import (
	"fmt"
	"strings"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderComplete  OrderStatus = "Complete"
	OrderFinalized OrderStatus = "Finalized"
	OrderCancelled OrderStatus = "Cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderComplete, OrderCancelled},
	OrderComplete:  {OrderFinalized, OrderCancelled},
	OrderFinalized: nil,
	OrderCancelled: nil,
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	for st := range orderTransitions {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TokenState has no transition out of TokenRevoked.
type TokenState string

const (
	TokenActive  TokenState = "active"
	TokenRevoked TokenState = "revoked"
)

func (s TokenState) Redeemable() bool {
	return s == TokenActive
}
