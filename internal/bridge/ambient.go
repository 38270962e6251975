package bridge

// Ambient shim declarations describe the helpers that appear in
// generated representations but exist in no real file. They are exposed
// to every engine instance through the virtual file system.

const ambientMarkupShims = "langbridge://ambient/markup.d.ts"

var ambientFiles = map[string]string{
	ambientMarkupShims: `// Helpers referenced by generated markup code.
declare namespace __lbx {
	// check evaluates a markup expression for type analysis only.
	function check(value: unknown): void;
}
export {};
`,
}
