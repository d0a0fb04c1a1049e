// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"net/http"
	"strconv"

	"github.com/pkg/errors"
)

// QueryUint64 parses the query parameter name as a decimal uint64.
// An absent parameter yields def.
func QueryUint64(req *http.Request, name string, def uint64) (uint64, error) {
	s := req.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, BadRequest(errors.WithMessage(err, name))
	}
	return v, nil
}

// Page parses the offset and limit query parameters. A limit above max is forbidden.
func Page(req *http.Request, maxLimit uint64) (offset, limit uint64, err error) {
	if offset, err = QueryUint64(req, "offset", 0); err != nil {
		return 0, 0, err
	}
	if limit, err = QueryUint64(req, "limit", 0); err != nil {
		return 0, 0, err
	}
	if limit > maxLimit {
		return 0, 0, Forbidden(errors.Errorf("limit exceeds the maximum allowed value of %d", maxLimit))
	}
	return offset, limit, nil
}
