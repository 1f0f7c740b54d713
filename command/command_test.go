package command_test

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/birdie-ai/remodel/command"
	"github.com/birdie-ai/remodel/obj"
	"github.com/google/go-cmp/cmp"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	const input = `[
		{"type": "createBucket", "name": "Shop", "data": {"comments": "main"}},
		{"type": "createCollection", "collectionName": "Orders", "bucketName": "Shop", "ifNotExist": true},
		{"type": "createView", "name": "v", "collectionName": "Orders", "select": {"start": 3, "stop": 9}},
		{"type": "updateColumn", "collectionName": "Orders", "data": {"fields": ["id"], "type": "required", "value": true}},
		null
	]`

	got, err := command.Decode(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 5 {
		t.Fatalf("got %d commands; want 5", len(got))
	}

	bucket := got[0]
	if bucket.Type != command.CreateBucket || bucket.Name != "Shop" {
		t.Errorf("unexpected bucket command: %+v", bucket)
	}
	if diff := cmp.Diff(bucket.DataObject(), obj.O{"comments": "main"}); diff != "" {
		t.Errorf("bucket data: got(-) want(+):\n%s", diff)
	}

	coll := got[1]
	if coll.CollectionName != "Orders" || coll.BucketName != "Shop" {
		t.Errorf("unexpected collection command: %+v", coll)
	}
	if diff := cmp.Diff(coll.Attributes("type", "collectionName", "bucketName"), obj.O{"ifNotExist": true}); diff != "" {
		t.Errorf("collection attributes: got(-) want(+):\n%s", diff)
	}

	view := got[2]
	if view.Select != (command.Span{Start: 3, Stop: 9}) {
		t.Errorf("got select %+v; want {3 9}", view.Select)
	}

	update := got[3].ColumnUpdate()
	want := command.ColumnUpdate{Fields: []string{"id"}, Type: "required", Value: true}
	if diff := cmp.Diff(update, want); diff != "" {
		t.Errorf("column update: got(-) want(+):\n%s", diff)
	}

	if got[4].Type != "" || got[4].Type.Known() {
		t.Errorf("null command must decode to a command with no type, got %+v", got[4])
	}
}

func TestDecodeInvalid(t *testing.T) {
	t.Parallel()

	const input = `[{"type": "createBucket"`
	_, err := command.Decode(strings.NewReader(input))

	var errDetails command.UnmarshalError
	if !errors.As(err, &errDetails) {
		t.Fatalf("got %v; want %T", err, errDetails)
	}
	if errDetails.Data != input {
		t.Errorf("got data %q; want %q", errDetails.Data, input)
	}
}

func TestDecoderStream(t *testing.T) {
	t.Parallel()

	const input = `{"type": "createBucket", "name": "a"}
{"type": "useBucket", "bucketName": "a"}
{"type": "removeBucket", "name": "a"}
`
	d := command.NewDecoder(strings.NewReader(input))
	var got []command.Type
	for c := range d.All() {
		got = append(got, c.Type)
	}
	if err := d.Error(); err != nil {
		t.Fatal(err)
	}
	want := []command.Type{command.CreateBucket, command.UseBucket, command.RemoveBucket}
	if !slices.Equal(got, want) {
		t.Fatalf("got %v; want %v", got, want)
	}
}

func TestDecoderStreamErr(t *testing.T) {
	t.Parallel()

	d := command.NewDecoder(strings.NewReader(`{"type": "useBucket"} {"type": `))
	count := 0
	for range d.All() {
		count++
	}
	if count != 1 {
		t.Errorf("got %d commands before error; want 1", count)
	}
	if d.Error() == nil {
		t.Fatal("want error, got nil")
	}
}

func TestDecodeScriptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "script.json")
	const content = `{"script": "CREATE DATABASE Shop;", "commands": [{"type": "createBucket", "name": "Shop"}]}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := command.DecodeScriptFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Text != "CREATE DATABASE Shop;" {
		t.Errorf("got text %q", s.Text)
	}
	if len(s.Commands) != 1 || s.Commands[0].Name != "Shop" {
		t.Errorf("got commands %+v", s.Commands)
	}

	if _, err := command.DecodeScriptFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("want error for missing file")
	}
}

func TestKnownTypes(t *testing.T) {
	t.Parallel()

	for _, typ := range command.Types() {
		if !typ.Known() {
			t.Errorf("type %q should be known", typ)
		}
	}
	if command.Type("dropEverything").Known() {
		t.Error("unexpected known type")
	}
	if len(command.Types()) != 14 {
		t.Errorf("got %d types; want 14", len(command.Types()))
	}
}
