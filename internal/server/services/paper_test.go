package services

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/campusvault/pyqhub/internal/common"
	"github.com/campusvault/pyqhub/internal/logging"
	"github.com/campusvault/pyqhub/internal/server/models"
	"github.com/campusvault/pyqhub/internal/server/repositories/repotest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPaperFixture(t *testing.T) (*PaperService, *repotest.Manager, *fakeBlob) {
	t.Helper()
	m := newFakeRepoManager()
	blob := &fakeBlob{}
	return NewPaperService(nil, m, blob, logging.NopLogger{}, testConfig()), m, blob
}

func seedSubject(m *repotest.Manager) *models.Subject {
	return m.SubjectsRepo.Add(&models.Subject{
		ID:       uuid.NewString(),
		Name:     "Data Structures",
		Code:     "CS201",
		Branch:   models.BranchCSE,
		Semester: 3,
	})
}

func seedPaper(m *repotest.Manager, status models.PaperStatus, uploaderID string) *models.PaperDetail {
	return m.PapersRepo.Add(&models.PaperDetail{
		Paper: models.Paper{
			Title:      "DS Midterm",
			Branch:     models.BranchCSE,
			Semester:   3,
			Year:       2024,
			Type:       models.PaperTypePeriodicTest,
			StorageKey: "papers/2024/05/" + uuid.NewString() + ".pdf",
			UploaderID: uploaderID,
			Status:     status,
		},
	})
}

func validUpload(subjectID string) UploadInput {
	return UploadInput{
		Title:       "DS Midterm 2024",
		Branch:      "CSE",
		Semester:    "3",
		Subject:     subjectID,
		Year:        "2024",
		Type:        "Periodic Test",
		FileName:    "midterm.pdf",
		ContentType: "application/pdf",
		Data:        []byte("%PDF-1.4 fake"),
	}
}

func TestPaperService_Upload(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending paper", func(t *testing.T) {
		s, m, blob := newPaperFixture(t)
		subject := seedSubject(m)

		paper, err := s.Upload(ctx, "uploader-1", validUpload(subject.ID))
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, paper.Status)
		assert.Equal(t, 2024, paper.Year)
		assert.Equal(t, "uploader-1", paper.UploaderID)
		assert.NotEmpty(t, paper.StorageKey)
		assert.Equal(t, "https://blobs.test/"+paper.StorageKey, paper.FileURL)
		assert.Equal(t, 1, blob.putCount())
	})

	t.Run("invalid metadata never reaches the blob store", func(t *testing.T) {
		s, m, blob := newPaperFixture(t)
		subject := seedSubject(m)

		in := validUpload(subject.ID)
		in.Year = "1987"
		in.Semester = "11"
		_, err := s.Upload(ctx, "uploader-1", in)

		var verr *common.ValidationError
		require.ErrorAs(t, err, &verr)
		fields := map[string]bool{}
		for _, f := range verr.Fields {
			fields[f.Field] = true
		}
		assert.True(t, fields["year"])
		assert.True(t, fields["semester"])
		assert.Zero(t, blob.putCount())
		assert.Zero(t, m.PapersRepo.Count())
	})

	t.Run("missing file", func(t *testing.T) {
		s, m, _ := newPaperFixture(t)
		subject := seedSubject(m)

		in := validUpload(subject.ID)
		in.Data = nil
		_, err := s.Upload(ctx, "uploader-1", in)

		var verr *common.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "pdf", verr.Fields[0].Field)
	})

	t.Run("oversize file", func(t *testing.T) {
		s, m, blob := newPaperFixture(t)
		subject := seedSubject(m)

		in := validUpload(subject.ID)
		in.Data = make([]byte, testConfig().MaxUploadBytes+1)
		_, err := s.Upload(ctx, "uploader-1", in)
		assert.ErrorIs(t, err, common.ErrPayloadTooLarge)
		assert.Zero(t, blob.putCount())
	})

	t.Run("non-pdf content type", func(t *testing.T) {
		s, m, _ := newPaperFixture(t)
		subject := seedSubject(m)

		in := validUpload(subject.ID)
		in.ContentType = "image/png"
		_, err := s.Upload(ctx, "uploader-1", in)

		var verr *common.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "pdf", verr.Fields[0].Field)
	})

	t.Run("pdf content type with parameters is accepted", func(t *testing.T) {
		s, m, _ := newPaperFixture(t)
		subject := seedSubject(m)

		in := validUpload(subject.ID)
		in.ContentType = "application/pdf; charset=binary"
		_, err := s.Upload(ctx, "uploader-1", in)
		assert.NoError(t, err)
	})

	t.Run("unknown subject", func(t *testing.T) {
		s, _, blob := newPaperFixture(t)

		_, err := s.Upload(ctx, "uploader-1", validUpload(uuid.NewString()))
		var verr *common.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "subject", verr.Fields[0].Field)
		assert.Zero(t, blob.putCount())
	})

	t.Run("blob failure leaves no catalog row", func(t *testing.T) {
		s, m, blob := newPaperFixture(t)
		subject := seedSubject(m)
		blob.putErr = errors.New("bucket unavailable")

		_, err := s.Upload(ctx, "uploader-1", validUpload(subject.ID))
		assert.ErrorIs(t, err, common.ErrorInternal)
		assert.Zero(t, m.PapersRepo.Count())
	})

	t.Run("catalog failure after put surfaces internal", func(t *testing.T) {
		s, m, blob := newPaperFixture(t)
		subject := seedSubject(m)
		m.PapersRepo.CreateErr = errors.New("db down")

		_, err := s.Upload(ctx, "uploader-1", validUpload(subject.ID))
		assert.ErrorIs(t, err, common.ErrorInternal)
		assert.Equal(t, 1, blob.putCount())
	})
}

func TestPaperService_GetGate(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name    string
		status  models.PaperStatus
		caller  *Caller
		wantErr error
	}{
		{"anonymous sees approved", models.StatusApproved, nil, nil},
		{"anonymous blocked from pending", models.StatusPending, nil, common.ErrorForbidden},
		{"anonymous blocked from rejected", models.StatusRejected, nil, common.ErrorForbidden},
		{"stranger blocked from pending", models.StatusPending, &Caller{UserID: "other", Role: models.RoleStudent}, common.ErrorForbidden},
		{"owner sees own pending", models.StatusPending, &Caller{UserID: "owner", Role: models.RoleStudent}, nil},
		{"owner sees own rejected", models.StatusRejected, &Caller{UserID: "owner", Role: models.RoleStudent}, nil},
		{"admin sees pending", models.StatusPending, &Caller{UserID: "adm", Role: models.RoleAdmin}, nil},
		{"admin sees rejected", models.StatusRejected, &Caller{UserID: "adm", Role: models.RoleAdmin}, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, m, _ := newPaperFixture(t)
			paper := seedPaper(m, tc.status, "owner")

			got, err := s.Get(ctx, tc.caller, paper.ID)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, paper.ID, got.ID)
		})
	}

	t.Run("missing paper", func(t *testing.T) {
		s, _, _ := newPaperFixture(t)
		_, err := s.Get(ctx, nil, uuid.NewString())
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})
}

func TestPaperService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("non-admin only ever sees approved", func(t *testing.T) {
		s, m, _ := newPaperFixture(t)
		seedPaper(m, models.StatusApproved, "u1")
		seedPaper(m, models.StatusPending, "u1")
		seedPaper(m, models.StatusRejected, "u1")

		for _, caller := range []*Caller{nil, {UserID: "u1", Role: models.RoleStudent}} {
			page, err := s.List(ctx, caller, ListQuery{Status: "pending"})
			require.NoError(t, err)
			require.Len(t, page.Items, 1)
			assert.Equal(t, models.StatusApproved, page.Items[0].Status)
		}
	})

	t.Run("admin can filter by status", func(t *testing.T) {
		s, m, _ := newPaperFixture(t)
		seedPaper(m, models.StatusApproved, "u1")
		seedPaper(m, models.StatusPending, "u1")

		page, err := s.List(ctx, &Caller{UserID: "adm", Role: models.RoleAdmin}, ListQuery{Status: "pending"})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, models.StatusPending, page.Items[0].Status)
	})

	t.Run("pagination is exhaustive and non-overlapping", func(t *testing.T) {
		s, m, _ := newPaperFixture(t)
		const total = 23
		for i := 0; i < total; i++ {
			p := seedPaper(m, models.StatusApproved, "u1")
			p.Title = "Paper " + strconv.Itoa(i)
		}

		seen := map[string]bool{}
		for page := 1; ; page++ {
			out, err := s.List(ctx, nil, ListQuery{Page: page, Limit: 10})
			require.NoError(t, err)
			assert.EqualValues(t, total, out.TotalCount)
			assert.EqualValues(t, 3, out.TotalPages())
			if len(out.Items) == 0 {
				break
			}
			for _, p := range out.Items {
				assert.False(t, seen[p.ID], "paper repeated across pages")
				seen[p.ID] = true
			}
		}
		assert.Len(t, seen, total)
	})

	t.Run("defaults applied to page and limit", func(t *testing.T) {
		s, m, _ := newPaperFixture(t)
		seedPaper(m, models.StatusApproved, "u1")

		page, err := s.List(ctx, nil, ListQuery{Page: -3, Limit: 0})
		require.NoError(t, err)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, 10, page.Limit)
	})
}

func TestPaperService_Download(t *testing.T) {
	ctx := context.Background()

	t.Run("returns presigned url and sanitized filename", func(t *testing.T) {
		s, m, _ := newPaperFixture(t)
		paper := seedPaper(m, models.StatusApproved, "u1")
		paper.Title = "DS Midterm (Sem-3)!"

		res, err := s.Download(ctx, nil, paper.ID)
		require.NoError(t, err)
		assert.Equal(t, "https://blobs.test/"+paper.StorageKey+"?sig=abc", res.URL)
		assert.Equal(t, "ds_midterm_sem_3_2024.pdf", res.Filename)
	})

	t.Run("gate applies", func(t *testing.T) {
		s, m, _ := newPaperFixture(t)
		paper := seedPaper(m, models.StatusPending, "u1")

		_, err := s.Download(ctx, nil, paper.ID)
		assert.ErrorIs(t, err, common.ErrorForbidden)
		assert.EqualValues(t, 0, m.PapersRepo.Downloads(paper.ID))
	})

	t.Run("increments the counter asynchronously", func(t *testing.T) {
		s, m, _ := newPaperFixture(t)
		paper := seedPaper(m, models.StatusApproved, "u1")

		_, err := s.Download(ctx, nil, paper.ID)
		require.NoError(t, err)
		assert.Eventually(t, func() bool {
			return m.PapersRepo.Downloads(paper.ID) == 1
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("concurrent downloads count exactly", func(t *testing.T) {
		s, m, _ := newPaperFixture(t)
		paper := seedPaper(m, models.StatusApproved, "u1")

		const n = 50
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.Download(ctx, nil, paper.ID)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		assert.Eventually(t, func() bool {
			return m.PapersRepo.Downloads(paper.ID) == n
		}, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("presign failure does not increment", func(t *testing.T) {
		s, m, blob := newPaperFixture(t)
		paper := seedPaper(m, models.StatusApproved, "u1")
		blob.presignErr = errors.New("presign down")

		_, err := s.Download(ctx, nil, paper.ID)
		assert.ErrorIs(t, err, common.ErrorInternal)
		assert.EqualValues(t, 0, m.PapersRepo.Downloads(paper.ID))
	})

	t.Run("increment failure does not affect the response", func(t *testing.T) {
		s, m, _ := newPaperFixture(t)
		paper := seedPaper(m, models.StatusApproved, "u1")
		m.PapersRepo.IncrementErr = errors.New("db down")

		_, err := s.Download(ctx, nil, paper.ID)
		assert.NoError(t, err)
	})
}

func TestPaperService_SetStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("pending can be approved and rejected", func(t *testing.T) {
		for _, next := range []models.PaperStatus{models.StatusApproved, models.StatusRejected} {
			s, m, _ := newPaperFixture(t)
			paper := seedPaper(m, models.StatusPending, "u1")

			got, err := s.SetStatus(ctx, paper.ID, next)
			require.NoError(t, err)
			assert.Equal(t, next, got.Status)
			assert.Equal(t, next, m.PapersRepo.Get(paper.ID).Status)
		}
	})

	t.Run("decisions are final", func(t *testing.T) {
		cases := []struct {
			from, to models.PaperStatus
		}{
			{models.StatusApproved, models.StatusRejected},
			{models.StatusApproved, models.StatusPending},
			{models.StatusRejected, models.StatusApproved},
			{models.StatusRejected, models.StatusPending},
			{models.StatusPending, models.StatusPending},
		}
		for _, tc := range cases {
			s, m, _ := newPaperFixture(t)
			paper := seedPaper(m, tc.from, "u1")

			_, err := s.SetStatus(ctx, paper.ID, tc.to)
			assert.ErrorIs(t, err, common.ErrInvalidTransition, "%s -> %s", tc.from, tc.to)
			assert.Equal(t, tc.from, m.PapersRepo.Get(paper.ID).Status)
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		s, m, _ := newPaperFixture(t)
		paper := seedPaper(m, models.StatusPending, "u1")

		var verr *common.ValidationError
		_, err := s.SetStatus(ctx, paper.ID, "archived")
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("missing paper", func(t *testing.T) {
		s, _, _ := newPaperFixture(t)
		_, err := s.SetStatus(ctx, uuid.NewString(), models.StatusApproved)
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})
}

func TestDownloadFilename(t *testing.T) {
	cases := []struct {
		title string
		year  int
		want  string
	}{
		{"DS Midterm", 2024, "ds_midterm_2024.pdf"},
		{"  Algo!! (Final) ", 2023, "algo_final_2023.pdf"},
		{"!!!", 2022, "paper_2022.pdf"},
		{"C++ & OOP", 2021, "c_oop_2021.pdf"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, downloadFilename(tc.title, tc.year))
	}
}
