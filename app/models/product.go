package models

import "encoding/json"

// Product is an opaque catalogue record. Only its identifier is known.
type Product struct {
	ID    interface{} `bson:"_id,omitempty"`
	Extra Fields      `bson:",inline"`
}

func (p Product) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Extra.merged(p.ID))
}

func (p *Product) UnmarshalJSON(data []byte) error {
	_, extra, err := splitFields(data)
	if err != nil {
		return err
	}
	*p = Product{Extra: extra}
	return nil
}
