// Copyright 2023 mcarilli
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package stark

import (
	"errors"
	"fmt"
)

// ErrWrongParameter is the configuration-error family: invalid AIR or domain
// parameters, including evaluation-engine failures caused by them. Proving
// never retries; the error is permanent until the caller fixes its input.
var ErrWrongParameter = errors.New("stark: wrong parameter")

// wrapConfig places an evaluation or commitment failure into the
// configuration-error family. Errors already in the family pass through
// unchanged.
func wrapConfig(op string, err error) error {
	if errors.Is(err, ErrWrongParameter) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrWrongParameter, op, err)
}
