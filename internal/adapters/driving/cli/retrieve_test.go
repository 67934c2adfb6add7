package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lomnlabs/lomn-cli/internal/core/domain"
)

func TestRetrieveCmd_Use(t *testing.T) {
	assert.Equal(t, "retrieve [query]", retrieveCmd.Use)
}

func TestRetrieveCmd_RequiresExactlyOneArg(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"retrieve"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestRetrieveCmd_HasKFlag(t *testing.T) {
	flag := retrieveCmd.Flags().Lookup("k")
	require.NotNil(t, flag, "k flag should exist")
	assert.Equal(t, "k", flag.Shorthand)
	assert.Equal(t, "4", flag.DefValue)
}

func TestRetrieveCmd_PrintsRankedEvidence(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	retrievalService = &mockRetrievalService{
		result: &domain.RetrievalResult{
			Query: "power wheelchair",
			K:     4,
			Evidence: []domain.Evidence{
				{
					Chunk: domain.Chunk{
						ID:         "guideline-01#0000",
						DocumentID: "guideline-01",
						Category:   domain.CategoryGuideline,
						Text:       "Power mobility devices are covered when the patient cannot self-propel.",
						Metadata:   map[string]string{"payer": "Acme Health"},
					},
					Score: 0.91,
				},
			},
		},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"retrieve", "power wheelchair"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Evidence for: power wheelchair")
	assert.Contains(t, buf.String(), "guideline-01#0000")
	assert.Contains(t, buf.String(), "0.910")
	assert.Contains(t, buf.String(), "Payer: Acme Health")
}

func TestRetrieveCmd_EmptyResult(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"retrieve", "nothing matches"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No evidence found.")
}

func TestRetrieveCmd_ForwardsKAndCategory(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	mock := &mockRetrievalService{}
	retrievalService = mock

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"retrieve", "-k", "8", "-c", "approved", "query"})
	defer func() {
		rootCmd.SetArgs(nil)
		retrieveK = domain.DefaultK
		retrieveCategory = ""
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, 8, mock.opts.K)
	assert.Equal(t, domain.CategoryApproved, mock.opts.Category)
}

func TestRetrieveCmd_RejectsUnknownCategory(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"retrieve", "-c", "bogus", "query"})
	defer func() {
		rootCmd.SetArgs(nil)
		retrieveCategory = ""
	}()

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown category "bogus"`)
}

func TestRetrieveCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	retrievalService = &mockRetrievalService{
		result: &domain.RetrievalResult{
			Query: "q",
			Evidence: []domain.Evidence{
				{Chunk: domain.Chunk{ID: "doc-1#0000"}, Score: 0.5},
			},
		},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"retrieve", "--json", "q"})
	defer func() {
		rootCmd.SetArgs(nil)
		retrieveJSON = false
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"Query"`)
	assert.Contains(t, buf.String(), `"doc-1#0000"`)
}

func TestRetrieveCmd_PropagatesError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	retrievalService = &mockRetrievalService{err: errors.New("index unavailable")}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"retrieve", "query"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "index unavailable")
}
