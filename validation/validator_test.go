package validation

import (
	goerrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oasvalidator/oasvalidator/document"
	"github.com/oasvalidator/oasvalidator/resolver"
)

func loadDoc(t *testing.T, src string) interface{} {
	t.Helper()

	doc, err := document.Load([]byte(src))
	require.NoError(t, err)
	return doc
}

func collectErrors(t *testing.T, v *SpecValidator, doc interface{}) []*Error {
	t.Helper()

	errs, err := v.Errors(doc, "")
	require.NoError(t, err)
	return errs
}

func TestValidateCleanDocument(t *testing.T) {
	doc := loadDoc(t, `
openapi: 3.0.0
info:
  title: Pet Store
  version: 1.0.0
paths:
  /pets:
    get:
      operationId: listPets
      parameters:
        - name: limit
          in: query
          schema:
            type: integer
            default: 20
      responses:
        "200":
          description: A list of pets
  /pets/{petId}:
    get:
      operationId: getPet
      parameters:
        - $ref: "#/components/parameters/PetID"
      responses:
        "200":
          description: A single pet
components:
  parameters:
    PetID:
      name: petId
      in: path
      required: true
      schema:
        type: string
  schemas:
    Pet:
      type: object
      required:
        - id
        - name
      properties:
        id:
          type: integer
        name:
          type: string
        tag:
          type: string
          nullable: true
          default: null
`)

	v := NewSpecValidator()

	errs := collectErrors(t, v, doc)
	assert.Empty(t, errs)
	assert.NoError(t, v.Validate(doc, ""))
}

func TestExtraRequiredProperties(t *testing.T) {
	doc := loadDoc(t, `
openapi: 3.0.0
info:
  title: Test
  version: 1.0.0
paths: {}
components:
  schemas:
    Thing:
      type: object
      required:
        - a
        - b
      properties:
        a:
          type: string
`)

	errs := collectErrors(t, NewSpecValidator(), doc)
	require.Len(t, errs, 1)
	assert.Equal(t, ExtraParameters, errs[0].Kind)
	assert.Contains(t, errs[0].Message, "b")
	assert.NotContains(t, errs[0].Message, "a,")
}

func TestAllOfComposedRequired(t *testing.T) {
	doc := loadDoc(t, `
openapi: 3.0.0
info:
  title: Test
  version: 1.0.0
paths: {}
components:
  schemas:
    Composed:
      allOf:
        - required:
            - a
        - properties:
            a:
              type: string
`)

	errs := collectErrors(t, NewSpecValidator(), doc)
	assert.Empty(t, errs)
}

func TestParameterDuplicate(t *testing.T) {
	doc := loadDoc(t, `
openapi: 3.0.0
info:
  title: Test
  version: 1.0.0
paths:
  /items/{id}:
    get:
      parameters:
        - name: id
          in: path
          required: true
          schema:
            type: string
        - name: id
          in: path
          required: true
          schema:
            type: string
      responses:
        "200":
          description: ok
`)

	errs := collectErrors(t, NewSpecValidator(), doc)
	require.Len(t, errs, 1)
	assert.Equal(t, ParameterDuplicate, errs[0].Kind)
	assert.Contains(t, errs[0].Message, `"id"`)
}

func TestUnresolvablePathParameter(t *testing.T) {
	undeclared := `
openapi: 3.0.0
info:
  title: Test
  version: 1.0.0
paths:
  /items/{id}:
    get:
      responses:
        "200":
          description: ok
`

	declaredOnOperation := `
openapi: 3.0.0
info:
  title: Test
  version: 1.0.0
paths:
  /items/{id}:
    get:
      parameters:
        - name: id
          in: path
          required: true
          schema:
            type: string
      responses:
        "200":
          description: ok
`

	declaredOnPathItem := `
openapi: 3.0.0
info:
  title: Test
  version: 1.0.0
paths:
  /items/{id}:
    parameters:
      - name: id
        in: path
        required: true
        schema:
          type: string
    get:
      responses:
        "200":
          description: ok
`

	wrongLocation := `
openapi: 3.0.0
info:
  title: Test
  version: 1.0.0
paths:
  /items/{id}:
    get:
      parameters:
        - name: id
          in: query
          schema:
            type: string
      responses:
        "200":
          description: ok
`

	t.Run("undeclared", func(t *testing.T) {
		errs := collectErrors(t, NewSpecValidator(), loadDoc(t, undeclared))
		require.Len(t, errs, 1)
		assert.Equal(t, UnresolvableParameter, errs[0].Kind)
		assert.Contains(t, errs[0].Message, `"id"`)
	})

	t.Run("declared on operation", func(t *testing.T) {
		errs := collectErrors(t, NewSpecValidator(), loadDoc(t, declaredOnOperation))
		assert.Empty(t, errs)
	})

	t.Run("declared on path item", func(t *testing.T) {
		errs := collectErrors(t, NewSpecValidator(), loadDoc(t, declaredOnPathItem))
		assert.Empty(t, errs)
	})

	t.Run("declared in wrong location", func(t *testing.T) {
		errs := collectErrors(t, NewSpecValidator(), loadDoc(t, wrongLocation))
		require.Len(t, errs, 1)
		assert.Equal(t, UnresolvableParameter, errs[0].Kind)
	})
}

func TestDuplicateOperationID(t *testing.T) {
	doc := loadDoc(t, `
openapi: 3.0.0
info:
  title: Test
  version: 1.0.0
paths:
  /a:
    get:
      operationId: listItems
      responses:
        "200":
          description: ok
  /b:
    get:
      operationId: listItems
      responses:
        "200":
          description: ok
`)

	errs := collectErrors(t, NewSpecValidator(), doc)
	require.Len(t, errs, 1)
	assert.Equal(t, DuplicateOperationID, errs[0].Kind)
	assert.Contains(t, errs[0].Message, "listItems")
	assert.Contains(t, errs[0].Message, "/b")
}

func TestAbsentOperationIDsDoNotCollide(t *testing.T) {
	doc := loadDoc(t, `
openapi: 3.0.0
info:
  title: Test
  version: 1.0.0
paths:
  /a:
    get:
      responses:
        "200":
          description: ok
  /b:
    get:
      responses:
        "200":
          description: ok
`)

	errs := collectErrors(t, NewSpecValidator(), doc)
	assert.Empty(t, errs)
}

func TestRegistryFreshPerPass(t *testing.T) {
	doc := loadDoc(t, `
openapi: 3.0.0
info:
  title: Test
  version: 1.0.0
paths:
  /a:
    get:
      operationId: listItems
      responses:
        "200":
          description: ok
`)

	v := NewSpecValidator()

	assert.Empty(t, collectErrors(t, v, doc))
	// A second pass over the same document must not see the first pass's
	// operation IDs.
	assert.Empty(t, collectErrors(t, v, doc))
}

func TestDialectSchemaViolation(t *testing.T) {
	doc := loadDoc(t, `
openapi: 3.0.0
paths: {}
`)

	errs := collectErrors(t, NewSpecValidator(), doc)
	require.NotEmpty(t, errs)
	assert.Equal(t, SchemaViolation, errs[0].Kind)
	assert.Contains(t, errs[0].Message, "info")
}

func TestDefaultValueConformance(t *testing.T) {
	badDefault := `
openapi: 3.0.0
info:
  title: Test
  version: 1.0.0
paths: {}
components:
  schemas:
    Thing:
      type: string
      default: 5
`

	nullDefaultNotNullable := `
openapi: 3.0.0
info:
  title: Test
  version: 1.0.0
paths: {}
components:
  schemas:
    Thing:
      type: string
      default: null
`

	nullDefaultNullable := `
openapi: 3.0.0
info:
  title: Test
  version: 1.0.0
paths: {}
components:
  schemas:
    Thing:
      type: string
      nullable: true
      default: null
`

	t.Run("mistyped default", func(t *testing.T) {
		errs := collectErrors(t, NewSpecValidator(), loadDoc(t, badDefault))
		require.Len(t, errs, 1)
		assert.Equal(t, SchemaViolation, errs[0].Kind)
	})

	t.Run("null default without nullable", func(t *testing.T) {
		errs := collectErrors(t, NewSpecValidator(), loadDoc(t, nullDefaultNotNullable))
		require.Len(t, errs, 1)
		assert.Equal(t, SchemaViolation, errs[0].Kind)
	})

	t.Run("null default with nullable", func(t *testing.T) {
		errs := collectErrors(t, NewSpecValidator(), loadDoc(t, nullDefaultNullable))
		assert.Empty(t, errs)
	})
}

func TestDefaultWithNestedReference(t *testing.T) {
	valid := `
openapi: 3.0.0
info:
  title: Test
  version: 1.0.0
paths: {}
components:
  schemas:
    A:
      type: object
      properties:
        b:
          $ref: "#/components/schemas/B"
      default:
        b: hello
    B:
      type: string
`

	invalid := `
openapi: 3.0.0
info:
  title: Test
  version: 1.0.0
paths: {}
components:
  schemas:
    A:
      type: object
      properties:
        b:
          $ref: "#/components/schemas/B"
      default:
        b: 5
    B:
      type: string
`

	t.Run("default matching referenced schema", func(t *testing.T) {
		errs := collectErrors(t, NewSpecValidator(), loadDoc(t, valid))
		assert.Empty(t, errs)
	})

	t.Run("default violating referenced schema", func(t *testing.T) {
		errs := collectErrors(t, NewSpecValidator(), loadDoc(t, invalid))
		require.Len(t, errs, 1)
		assert.Equal(t, SchemaViolation, errs[0].Kind)
	})
}

func TestParameterDefaultWithNestedReference(t *testing.T) {
	doc := loadDoc(t, `
openapi: 3.0.0
info:
  title: Test
  version: 1.0.0
paths:
  /items:
    get:
      parameters:
        - name: filter
          in: query
          type: object
          properties:
            b:
              $ref: "#/components/schemas/B"
          default:
            b: hello
      responses:
        "200":
          description: ok
components:
  schemas:
    B:
      type: string
`)

	errs := collectErrors(t, NewSpecValidator(), doc)
	assert.Empty(t, errs)
}

func TestDefaultWithCrossDocumentReference(t *testing.T) {
	store := resolver.NewStore()
	store.Add("mem://shared.json", loadDoc(t, `
Name:
  type: string
`))

	doc := loadDoc(t, `
openapi: 3.0.0
info:
  title: Test
  version: 1.0.0
paths: {}
components:
  schemas:
    A:
      type: object
      properties:
        name:
          $ref: "mem://shared.json#/Name"
      default:
        name: hello
`)

	v := NewSpecValidator(WithHandler("mem", store.Handler))

	errs, err := v.Errors(doc, "mem://root.json")
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestLegacyParameterDefault(t *testing.T) {
	doc := loadDoc(t, `
openapi: 3.0.0
info:
  title: Test
  version: 1.0.0
paths:
  /items:
    get:
      parameters:
        - name: limit
          in: query
          type: integer
          default: oops
      responses:
        "200":
          description: ok
`)

	errs := collectErrors(t, NewSpecValidator(), doc)
	require.Len(t, errs, 1)
	assert.Equal(t, SchemaViolation, errs[0].Kind)
}

func TestValidateReturnsFirstError(t *testing.T) {
	doc := loadDoc(t, `
openapi: 3.0.0
info:
  title: Test
  version: 1.0.0
paths:
  /a:
    get:
      operationId: listItems
      responses:
        "200":
          description: ok
  /b:
    get:
      operationId: listItems
      responses:
        "200":
          description: ok
  /c/{id}:
    get:
      responses:
        "200":
          description: ok
`)

	v := NewSpecValidator()

	errs := collectErrors(t, v, doc)
	require.Len(t, errs, 2)

	err := v.Validate(doc, "")
	require.Error(t, err)

	var finding *Error
	require.True(t, goerrors.As(err, &finding))
	assert.Equal(t, errs[0].Kind, finding.Kind)
	assert.Equal(t, errs[0].Message, finding.Message)
}

func TestIterErrorsStopsWhenSinkReturnsFalse(t *testing.T) {
	doc := loadDoc(t, `
openapi: 3.0.0
info:
  title: Test
  version: 1.0.0
paths:
  /a/{x}:
    get:
      responses:
        "200":
          description: ok
  /b/{y}:
    get:
      responses:
        "200":
          description: ok
`)

	v := NewSpecValidator()

	seen := 0
	err := v.IterErrors(doc, "", func(e *Error) bool {
		seen++
		return false
	})
	require.NoError(t, err)
	assert.Equal(t, 1, seen)
}

func TestReferencedDocumentViaHandler(t *testing.T) {
	store := resolver.NewStore()
	store.Add("mem://shared.json", loadDoc(t, `
Pet:
  type: object
  required:
    - id
  properties:
    id:
      type: integer
`))

	doc := loadDoc(t, `
openapi: 3.0.0
info:
  title: Test
  version: 1.0.0
paths: {}
components:
  schemas:
    Pet:
      $ref: "mem://shared.json#/Pet"
`)

	v := NewSpecValidator(WithHandler("mem", store.Handler))

	errs, err := v.Errors(doc, "mem://root.json")
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestCircularReferenceAbortsPass(t *testing.T) {
	doc := loadDoc(t, `
openapi: 3.0.0
info:
  title: Test
  version: 1.0.0
paths: {}
components:
  schemas:
    A:
      $ref: "#/components/schemas/B"
    B:
      $ref: "#/components/schemas/A"
`)

	v := NewSpecValidator()

	_, err := v.Errors(doc, "")
	require.Error(t, err)
	assert.True(t, goerrors.Is(err, ErrCircularReference))
}

func TestUnresolvableReferenceAbortsPass(t *testing.T) {
	doc := loadDoc(t, `
openapi: 3.0.0
info:
  title: Test
  version: 1.0.0
paths: {}
components:
  schemas:
    A:
      $ref: "#/components/schemas/Missing"
`)

	v := NewSpecValidator()

	_, err := v.Errors(doc, "")
	require.Error(t, err)
	assert.True(t, goerrors.Is(err, resolver.ErrMissingTarget))
}

func TestTemplateParameters(t *testing.T) {
	testCases := []struct {
		url      string
		expected []string
	}{
		{"/items", nil},
		{"/items/{id}", []string{"id"}},
		{"/users/{userId}/posts/{postId}", []string{"userId", "postId"}},
		{"/broken/{id", nil},
		{"/empty/{}", nil},
	}

	for _, testCase := range testCases {
		t.Run(testCase.url, func(t *testing.T) {
			assert.Equal(t, testCase.expected, templateParameters(testCase.url))
		})
	}
}
