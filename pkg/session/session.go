package session

import (
	"math/rand"
	"time"
)

type Variant string

const (
	VariantPro     Variant = "pro"
	VariantAgainst Variant = "against"
	VariantMixed   Variant = "mixed"
)

func (v Variant) Valid() bool {
	return v == VariantPro || v == VariantAgainst || v == VariantMixed
}

var variants = []Variant{VariantPro, VariantAgainst, VariantMixed}

// Picks a feed variant for a fresh visitor, uniform over the three
// framings. Assignment happens once per session and stays sticky.
func ChooseVariant() Variant {
	return variants[rand.Intn(len(variants))]
}

type Session struct {
	Id         string    `bson:"_id" json:"sessionId"`
	Variant    Variant   `bson:"variant" json:"variant"`
	AssignedAt time.Time `bson:"assignedAt" json:"assignedAt"`
	StartedAt  time.Time `bson:"startedAt" json:"startedAt"`
	UserAgent  string    `bson:"userAgent" json:"-"`
}
