package models

// Zone is a service zone or, when IsCommunity is set, a community area.
type Zone struct {
	ID          int32  `json:"id" validate:"gte=0"`
	Name        string `json:"name" validate:"required,min=2,max=255"`
	IsCommunity bool   `json:"is_community"`
}

// ZoneFilter narrows a zone listing. A nil IsCommunity lists every zone.
type ZoneFilter struct {
	IsCommunity *bool
}
