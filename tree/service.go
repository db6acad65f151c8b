package tree

// Service is a namespace of RPCMethod children.
type Service struct {
	*container
	methods []*RPCMethod
}

// NewService creates a Service child of parent.
func NewService(parent Node, name Name) *Service {
	s := arenasOf(parent).services.New(Service{container: newContainer(name, parent)})
	if p, ok := parent.(Container); ok {
		addChild(p, s)
	}
	return s
}

func (s *Service) Methods() []*RPCMethod { return s.methods }

// AddMethod appends a new RPCMethod, not yet resolved.
func (s *Service) AddMethod(name Name, requestName, responseName string, requestStream, responseStream bool) *RPCMethod {
	m := arenasOf(s).methods.New(RPCMethod{
		name:           name,
		parent:         s,
		requestName:    requestName,
		responseName:   responseName,
		requestStream:  requestStream,
		responseStream: responseStream,
	})
	s.methods = append(s.methods, m)
	s.container.add(m)
	return m
}

// RPCMethod is a single RPC declared on a Service.
type RPCMethod struct {
	name           Name
	parent         Node
	requestName    string
	responseName   string
	requestStream  bool
	responseStream bool
	options        map[string]any

	resolvedRequestType  *Message
	resolvedResponseType *Message
}

func (m *RPCMethod) Name() Name           { return m.name }
func (m *RPCMethod) Parent() Node         { return m.parent }
func (m *RPCMethod) FullName() FullName   { return fullName(m.parent, m.name) }
func (m *RPCMethod) RequestName() string  { return m.requestName }
func (m *RPCMethod) ResponseName() string { return m.responseName }
func (m *RPCMethod) RequestStream() bool  { return m.requestStream }
func (m *RPCMethod) ResponseStream() bool { return m.responseStream }

func (m *RPCMethod) ResolvedRequestType() *Message  { return m.resolvedRequestType }
func (m *RPCMethod) ResolvedResponseType() *Message { return m.resolvedResponseType }

// Resolve binds the method's request/response names to concrete messages,
// the job of the resolution pass (spec.md §4.5).
func (m *RPCMethod) Resolve(req, resp *Message) {
	m.resolvedRequestType = req
	m.resolvedResponseType = resp
}

// Options returns the method's option table, creating it on first use.
func (m *RPCMethod) Options() map[string]any {
	if m.options == nil {
		m.options = make(map[string]any)
	}
	return m.options
}
