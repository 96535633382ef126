package ir

// Parameter locations.
const (
	InPath   = "path"
	InQuery  = "query"
	InHeader = "header"
	InCookie = "cookie"
)

// ResponseRole is the part a response plays in an operation.
type ResponseRole string

const (
	RoleSuccess ResponseRole = "success"
	RoleError   ResponseRole = "error"
	RoleDefault ResponseRole = "default"
)

// CastrOperation is one method on one path.
type CastrOperation struct {
	Method       string                 `json:"method"`
	Path         string                 `json:"path"`
	OperationID  string                 `json:"operationId,omitempty"`
	Summary      string                 `json:"summary,omitempty"`
	Description  string                 `json:"description,omitempty"`
	Tags         []string               `json:"tags"`
	Parameters   []*Parameter           `json:"parameters"`
	ByLocation   ParameterGroups        `json:"parametersByLocation"`
	RequestBody  *RequestBody           `json:"requestBody,omitempty"`
	Responses    []*OperationResponse   `json:"responses"`
	Security     *[]SecurityRequirement `json:"security,omitempty"`
	Deprecated   bool                   `json:"deprecated,omitempty"`
	Servers      []Server               `json:"servers"`
	Callbacks    map[string]any         `json:"callbacks"`
	ExternalDocs *ExternalDocs          `json:"externalDocs,omitempty"`
	Extensions   map[string]any         `json:"extensions"`

	// PathSummary, PathDescription and PathExtensions belong to the path item
	// and are repeated on each of its operations.
	PathSummary     string         `json:"pathSummary,omitempty"`
	PathDescription string         `json:"pathDescription,omitempty"`
	PathExtensions  map[string]any `json:"pathExtensions"`
}

// ParameterGroups are the operation's parameters split by location.
type ParameterGroups struct {
	Path   []*Parameter `json:"path"`
	Query  []*Parameter `json:"query"`
	Header []*Parameter `json:"header"`
	Cookie []*Parameter `json:"cookie"`
}

// OperationResponse is a response keyed by its status code.
type OperationResponse struct {
	StatusCode string       `json:"statusCode"`
	Role       ResponseRole `json:"role"`
	Response   *Response    `json:"response"`
}

// SecurityRequirement maps scheme names to scopes.
type SecurityRequirement map[string][]string

// Parameter is an operation or component parameter. When Ref is set the
// remaining fields are copied from the resolved component.
type Parameter struct {
	Ref             string                `json:"$ref,omitempty"`
	Name            string                `json:"name"`
	In              string                `json:"in"`
	Description     string                `json:"description,omitempty"`
	Required        bool                  `json:"required,omitempty"`
	Deprecated      bool                  `json:"deprecated,omitempty"`
	AllowEmptyValue bool                  `json:"allowEmptyValue,omitempty"`
	Style           string                `json:"style,omitempty"`
	Explode         *bool                 `json:"explode,omitempty"`
	AllowReserved   bool                  `json:"allowReserved,omitempty"`
	Schema          *CastrSchema          `json:"schema,omitempty"`
	Content         map[string]*MediaType `json:"content"`
	Example         any                   `json:"example,omitempty"`
	Examples        map[string]any        `json:"examples"`
	Extensions      map[string]any        `json:"extensions"`
}

// RequestBody is an operation or component request body.
type RequestBody struct {
	Ref         string                `json:"$ref,omitempty"`
	Description string                `json:"description,omitempty"`
	Required    bool                  `json:"required,omitempty"`
	Content     map[string]*MediaType `json:"content"`
	Extensions  map[string]any        `json:"extensions"`
}

// Response is an operation or component response.
type Response struct {
	Ref         string                `json:"$ref,omitempty"`
	Description string                `json:"description"`
	Headers     map[string]*Header    `json:"headers"`
	Content     map[string]*MediaType `json:"content"`
	Links       map[string]any        `json:"links"`
	Extensions  map[string]any        `json:"extensions"`
}

// Header is a response header or header component.
type Header struct {
	Ref         string                `json:"$ref,omitempty"`
	Description string                `json:"description,omitempty"`
	Required    bool                  `json:"required,omitempty"`
	Deprecated  bool                  `json:"deprecated,omitempty"`
	Style       string                `json:"style,omitempty"`
	Explode     *bool                 `json:"explode,omitempty"`
	Schema      *CastrSchema          `json:"schema,omitempty"`
	Content     map[string]*MediaType `json:"content"`
	Example     any                   `json:"example,omitempty"`
	Examples    map[string]any        `json:"examples"`
	Extensions  map[string]any        `json:"extensions"`
}

// MediaType is the schema and examples for one content type.
type MediaType struct {
	Schema     *CastrSchema   `json:"schema,omitempty"`
	Example    any            `json:"example,omitempty"`
	Examples   map[string]any `json:"examples"`
	Encoding   map[string]any `json:"encoding"`
	Extensions map[string]any `json:"extensions"`
}

// SecurityScheme is a security scheme component.
type SecurityScheme struct {
	Type             string         `json:"type"`
	Description      string         `json:"description,omitempty"`
	Name             string         `json:"name,omitempty"`
	In               string         `json:"in,omitempty"`
	Scheme           string         `json:"scheme,omitempty"`
	BearerFormat     string         `json:"bearerFormat,omitempty"`
	Flows            any            `json:"flows,omitempty"`
	OpenIDConnectURL string         `json:"openIdConnectUrl,omitempty"`
	Extensions       map[string]any `json:"extensions"`
}
