package api

// Dentist is an in-network provider shown on a dentists card
type Dentist struct {
	Name     string  `json:"name" yaml:"name"`
	Distance string  `json:"distance" yaml:"distance"`
	NextSlot string  `json:"nextSlot" yaml:"nextSlot"`
	Address  string  `json:"address" yaml:"address"`
	Rating   float64 `json:"rating" yaml:"rating"`
	ID       int     `json:"id" yaml:"id"`
}

// Entity converts the dentist to a selectable entity. Field names match
// the placeholders used in flow content, such as {entity.nextSlot}
func (d Dentist) Entity() Entity {
	return Entity{
		"id":       d.ID,
		"name":     d.Name,
		"distance": d.Distance,
		"rating":   d.Rating,
		"nextSlot": d.NextSlot,
		"address":  d.Address,
	}
}
