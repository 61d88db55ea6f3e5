/*
 * Cherry - An OpenFlow Controller
 *
 * Copyright (C) 2015 Samjung Data Service, Inc. All rights reserved.
 * Kitae Kim <superkkt@sds.co.kr>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation; either version 2 of the License, or
 * any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License along
 * with this program; if not, write to the Free Software Foundation, Inc.,
 * 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
 */

package log

import (
	"strconv"
	"testing"

	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoRoutineID(t *testing.T) {
	id := getGoRoutineID()
	_, err := strconv.ParseUint(id, 10, 64)
	require.NoError(t, err)

	other := make(chan string)
	go func() { other <- getGoRoutineID() }()
	assert.NotEqual(t, id, <-other)
}

func TestStderr(t *testing.T) {
	backend := NewStderr("test")
	leveled := logging.AddModuleLevel(backend)
	leveled.SetLevel(logging.ERROR, "")

	assert.True(t, leveled.IsEnabledFor(logging.ERROR, "test"))
	assert.False(t, leveled.IsEnabledFor(logging.DEBUG, "test"))
}
