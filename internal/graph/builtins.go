package graph

import "strings"

// nodeBuiltins lists Node.js core modules. Subpaths such as "fs/promises"
// are matched by their first segment.
var nodeBuiltins = setOf(
	"assert", "async_hooks", "buffer", "child_process", "cluster", "console",
	"constants", "crypto", "dgram", "diagnostics_channel", "dns", "domain",
	"events", "fs", "http", "http2", "https", "inspector", "module", "net",
	"os", "path", "perf_hooks", "process", "punycode", "querystring",
	"readline", "repl", "stream", "string_decoder", "sys", "timers", "tls",
	"trace_events", "tty", "url", "util", "v8", "vm", "wasi",
	"worker_threads", "zlib",
)

// pythonBuiltins lists commonly imported standard-library top-level modules.
var pythonBuiltins = setOf(
	"__future__", "abc", "argparse", "array", "ast", "asyncio", "base64",
	"bisect", "builtins", "calendar", "collections", "concurrent",
	"contextlib", "contextvars", "copy", "csv", "ctypes", "dataclasses",
	"datetime", "decimal", "difflib", "email", "enum", "errno", "fnmatch",
	"fractions", "functools", "gc", "getpass", "glob", "gzip", "hashlib",
	"heapq", "hmac", "html", "http", "importlib", "inspect", "io",
	"ipaddress", "itertools", "json", "logging", "math", "mimetypes",
	"multiprocessing", "operator", "os", "pathlib", "pickle", "platform",
	"pprint", "queue", "random", "re", "secrets", "select", "shlex",
	"shutil", "signal", "socket", "sqlite3", "ssl", "stat", "statistics",
	"string", "struct", "subprocess", "sys", "tempfile", "textwrap",
	"threading", "time", "timeit", "traceback", "types", "typing",
	"unittest", "urllib", "uuid", "warnings", "weakref", "xml", "zipfile",
	"zoneinfo",
)

// rustBuiltins lists crates shipped with the Rust toolchain.
var rustBuiltins = setOf("std", "core", "alloc", "proc_macro", "test")

func setOf(names ...string) map[string]bool {
	s := make(map[string]bool, len(names))
	for _, n := range names {
		s[n] = true
	}
	return s
}

// isNodeBuiltin reports whether target names a Node.js core module.
func isNodeBuiltin(target string) bool {
	if strings.HasPrefix(target, "node:") {
		return true
	}
	return nodeBuiltins[firstSegment(target, "/")]
}

// isGoStdlib reports whether target is a standard-library import path: its
// first element has no dot and it is not inside the main module.
func isGoStdlib(target, mainModule string) bool {
	if mainModule != "" && (target == mainModule || strings.HasPrefix(target, mainModule+"/")) {
		return false
	}
	return !strings.Contains(firstSegment(target, "/"), ".")
}

func firstSegment(s, sep string) string {
	if idx := strings.Index(s, sep); idx != -1 {
		return s[:idx]
	}
	return s
}
