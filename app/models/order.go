package models

import "encoding/json"

// Order belongs to the user named by UserEmail. Nothing enforces that the
// user exists.
type Order struct {
	ID        interface{} `bson:"_id,omitempty"`
	UserEmail string      `bson:"userEmail"`
	Status    string      `bson:"status,omitempty"`
	Extra     Fields      `bson:",inline"`
}

func (o Order) MarshalJSON() ([]byte, error) {
	doc := o.Extra.merged(o.ID)
	doc["userEmail"] = o.UserEmail
	if o.Status != "" {
		doc["status"] = o.Status
	}
	return json.Marshal(doc)
}

func (o *Order) UnmarshalJSON(data []byte) error {
	known, extra, err := splitFields(data, "userEmail", "status")
	if err != nil {
		return err
	}
	vals, err := stringFields(known, "userEmail", "status")
	if err != nil {
		return err
	}
	*o = Order{UserEmail: vals[0], Status: vals[1], Extra: extra}
	return nil
}
