// Copyright 2025 Northern.tech AS
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Values for the glucose display units
const (
	UnitsMmol = "mmol"
	UnitsMgdl = "mgdl"
)

// SetupRequest carries the values submitted through the first-boot
// configuration portal.
type SetupRequest struct {
	WifiSSID     string  `json:"ssid" form:"ssid"`
	WifiPassword string  `json:"pwd" form:"pwd"`
	ServerURL    string  `json:"ns_url" form:"ns_url"`
	ServerToken  string  `json:"token" form:"token"`
	Endpoint     string  `json:"endpoint" form:"endpoint"`
	Units        string  `json:"units" form:"units"`
	LowLimit     float64 `json:"low" form:"low"`
	HighLimit    float64 `json:"high" form:"high"`
	StaleMinutes float64 `json:"stale" form:"stale"`
}

// Validate validates the struct
func (r SetupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.WifiSSID, validation.Required),
		validation.Field(&r.ServerURL, validation.Required, is.URL),
		validation.Field(&r.Units,
			validation.In(UnitsMmol, UnitsMgdl)),
	)
}
