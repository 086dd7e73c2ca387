// SPDX-License-Identifier: Apache-2.0

package relation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgmask/pgmask/pkg/relation"
)

func TestStore_LookupMissReturnsNoHit(t *testing.T) {
	s := relation.New()

	value, hit, err := s.Lookup("users", "email", "email", "alice@example.com")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Empty(t, value)
}

func TestStore_RecordThenLookupHits(t *testing.T) {
	s := relation.New()

	s.Record("users", "email", []relation.Binding{
		{FromColumn: "email", SourceValue: "alice@example.com"},
	}, "obfuscated-1@example.com")

	value, hit, err := s.Lookup("users", "email", "email", "alice@example.com")
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, "obfuscated-1@example.com", value)
}

func TestStore_CrossTableAsymmetricWriteRead(t *testing.T) {
	s := relation.New()

	// orders.customer_email declares a relation pointing at
	// users.email; the write lands under orders' own key with
	// from_column "customer_email", so a read keyed the same way hits.
	s.Record("orders", "customer_email", []relation.Binding{
		{FromColumn: "customer_email", SourceValue: "bob@example.com"},
	}, "fake-bob@example.com")

	value, hit, err := s.Lookup("orders", "customer_email", "customer_email", "bob@example.com")
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, "fake-bob@example.com", value)
}

func TestStore_RecordUnderMultipleBindingsShareOneKey(t *testing.T) {
	s := relation.New()

	s.Record("users", "email", []relation.Binding{
		{FromColumn: "email", SourceValue: "carol@example.com"},
		{FromColumn: "backup_email", SourceValue: "carol.alt@example.com"},
	}, "fake-carol@example.com")

	v1, hit1, err := s.Lookup("users", "email", "email", "carol@example.com")
	require.NoError(t, err)
	require.True(t, hit1)

	v2, hit2, err := s.Lookup("users", "email", "backup_email", "carol.alt@example.com")
	require.NoError(t, err)
	require.True(t, hit2)

	assert.Equal(t, v1, v2)
}

func TestErrInvalidKey_Error(t *testing.T) {
	err := relation.ErrInvalidKey{Key: relation.Key("abc")}
	assert.Contains(t, err.Error(), "abc")
}
