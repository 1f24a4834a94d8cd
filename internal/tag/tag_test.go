package tag

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/hitoshi/qanda/internal/model"
)

// --- モック ---

// memTagRepo はname一意制約を持つインメモリのTagRepository。
type memTagRepo struct {
	mu     sync.Mutex
	nextID int64
	tags   map[string]*model.Tag

	findCalls   int
	createCalls int

	// beforeCreateFn はCreateManyの直前に呼ばれる。並行作成の再現に使う。
	beforeCreateFn func()
	createErr      error
}

func newMemTagRepo() *memTagRepo {
	return &memTagRepo{tags: map[string]*model.Tag{}}
}

func (m *memTagRepo) insert(name string) *model.Tag {
	m.nextID++
	t := &model.Tag{ID: m.nextID, Name: name}
	m.tags[name] = t
	return t
}

func (m *memTagRepo) FindByNames(ctx context.Context, names []string) ([]*model.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findCalls++
	var result []*model.Tag
	for _, n := range names {
		if t, ok := m.tags[n]; ok {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *memTagRepo) CreateMany(ctx context.Context, names []string) ([]*model.Tag, error) {
	if m.beforeCreateFn != nil {
		m.beforeCreateFn()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.createErr != nil {
		return nil, m.createErr
	}
	var created []*model.Tag
	for _, n := range names {
		if _, ok := m.tags[n]; ok {
			continue // ON CONFLICT DO NOTHING
		}
		created = append(created, m.insert(n))
	}
	return created, nil
}

func (m *memTagRepo) List(ctx context.Context) ([]*model.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*model.Tag
	for _, t := range m.tags {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func names(tags []*model.Tag) []string {
	result := make([]string, 0, len(tags))
	for _, t := range tags {
		result = append(result, t.Name)
	}
	sort.Strings(result)
	return result
}

// --- Normalize ---

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"大文字小文字と空白を正規化して重複を除去", []string{"React", " react ", "REACT", "hooks"}, []string{"react", "hooks"}},
		{"空の名前を除去", []string{"", "  ", "go"}, []string{"go"}},
		{"出現順を保持", []string{"b", "a", "B", "c"}, []string{"b", "a", "c"}},
		{"nil入力", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := [][]string{
		{"React", " react ", "Go", "go ", ""},
		{"Ünïcode", "ÜNÏCODE", "x"},
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("Normalize is not idempotent: %q -> %q -> %q", in, once, twice)
		}
	}
}

func TestValidate(t *testing.T) {
	t.Run("5件までは許可", func(t *testing.T) {
		if err := Validate([]string{"a", "b", "c", "d", "e"}); err != nil {
			t.Errorf("Validate returned error: %v", err)
		}
	})

	t.Run("6件はTOO_MANY_TAGS", func(t *testing.T) {
		err := Validate([]string{"a", "b", "c", "d", "e", "f"})
		var apiErr *model.APIError
		if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeTooManyTags {
			t.Errorf("Validate error = %v, want TOO_MANY_TAGS", err)
		}
	})

	t.Run("51文字の名前はVALIDATION_FAILED", func(t *testing.T) {
		err := Validate([]string{strings.Repeat("x", 51)})
		var apiErr *model.APIError
		if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidationFailed {
			t.Errorf("Validate error = %v, want VALIDATION_FAILED", err)
		}
	})

	t.Run("マルチバイト50文字は許可", func(t *testing.T) {
		if err := Validate([]string{strings.Repeat("語", 50)}); err != nil {
			t.Errorf("Validate returned error: %v", err)
		}
	})
}

// --- Resolver ---

func TestResolver_Resolve_CreatesMissingAndReusesExisting(t *testing.T) {
	repo := newMemTagRepo()
	existing := repo.insert("go")
	resolver := NewResolver(repo)

	got, err := resolver.Resolve(context.Background(), []string{"Go", "React", "react", " sql "})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	if want := []string{"go", "react", "sql"}; !reflect.DeepEqual(names(got), want) {
		t.Errorf("Resolve names = %v, want %v", names(got), want)
	}
	for _, tg := range got {
		if tg.Name == "go" && tg.ID != existing.ID {
			t.Errorf("existing tag was not reused: got ID %d, want %d", tg.ID, existing.ID)
		}
	}
	if len(repo.tags) != 3 {
		t.Errorf("tag rows = %d, want 3", len(repo.tags))
	}
	if repo.createCalls != 1 {
		t.Errorf("CreateMany calls = %d, want 1 (batched)", repo.createCalls)
	}
}

func TestResolver_Resolve_AllExisting_NoCreate(t *testing.T) {
	repo := newMemTagRepo()
	repo.insert("go")
	repo.insert("sql")
	resolver := NewResolver(repo)

	got, err := resolver.Resolve(context.Background(), []string{"SQL", "go"})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Resolve returned %d tags, want 2", len(got))
	}
	if repo.createCalls != 0 {
		t.Errorf("CreateMany should not be called, got %d calls", repo.createCalls)
	}
}

func TestResolver_Resolve_Empty(t *testing.T) {
	repo := newMemTagRepo()
	resolver := NewResolver(repo)

	got, err := resolver.Resolve(context.Background(), []string{"", "  "})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Resolve = %v, want empty", got)
	}
	if repo.findCalls != 0 || repo.createCalls != 0 {
		t.Error("repository should not be called for empty input")
	}
}

func TestResolver_Resolve_ConcurrentCreationIsReRead(t *testing.T) {
	repo := newMemTagRepo()
	// CreateManyの直前に別トランザクションが同じ名前を作成した状況を再現する
	repo.beforeCreateFn = func() {
		repo.mu.Lock()
		defer repo.mu.Unlock()
		if _, ok := repo.tags["react"]; !ok {
			repo.insert("react")
		}
	}
	resolver := NewResolver(repo)

	got, err := resolver.Resolve(context.Background(), []string{"react", "hooks"})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if want := []string{"hooks", "react"}; !reflect.DeepEqual(names(got), want) {
		t.Errorf("Resolve names = %v, want %v", names(got), want)
	}
	if len(repo.tags) != 2 {
		t.Errorf("tag rows = %d, want 2", len(repo.tags))
	}
}

// 同じ名前を並行して解決しても、正規化後の名前ごとにタグ行は1件だけ
func TestResolver_Resolve_ParallelCallers_OneRowPerName(t *testing.T) {
	repo := newMemTagRepo()
	resolver := NewResolver(repo)

	var wg sync.WaitGroup
	results := make([][]*model.Tag, 8)
	errs := make([]error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			input := []string{"React", "go"}
			if i%2 == 0 {
				input = []string{" react", "GO", "sql"}
			}
			results[i], errs[i] = resolver.Resolve(context.Background(), input)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("Resolve[%d] returned error: %v", i, err)
		}
	}
	if len(repo.tags) != 3 {
		t.Errorf("tag rows = %d, want 3", len(repo.tags))
	}

	ids := map[string]int64{}
	for _, res := range results {
		for _, tg := range res {
			if id, ok := ids[tg.Name]; ok && id != tg.ID {
				t.Errorf("tag %q resolved to different IDs: %d and %d", tg.Name, id, tg.ID)
			}
			ids[tg.Name] = tg.ID
		}
	}
}

func TestResolver_Resolve_PropagatesError(t *testing.T) {
	repo := newMemTagRepo()
	repo.createErr = errors.New("db down")
	resolver := NewResolver(repo)

	_, err := resolver.Resolve(context.Background(), []string{"go"})
	if err == nil || !errors.Is(err, repo.createErr) {
		t.Errorf("Resolve error = %v, want wrapped %v", err, repo.createErr)
	}
}

func TestResolver_List(t *testing.T) {
	repo := newMemTagRepo()
	repo.insert("sql")
	repo.insert("go")
	resolver := NewResolver(repo)

	got, err := resolver.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(got) != 2 || got[0].Name != "go" || got[1].Name != "sql" {
		t.Errorf("List = %v, want [go sql]", names(got))
	}
}
