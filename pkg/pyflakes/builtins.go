package pyflakes

// builtinNames are always defined in every scope.
var builtinNames = toSet(
	// Constants and types.
	"False", "None", "True", "Ellipsis", "NotImplemented",
	"bool", "bytearray", "bytes", "complex", "dict", "float", "frozenset",
	"int", "list", "memoryview", "object", "range", "set", "slice", "str",
	"tuple", "type",
	// Functions.
	"abs", "aiter", "all", "anext", "any", "ascii", "bin", "breakpoint",
	"callable", "chr", "classmethod", "compile", "copyright", "credits",
	"delattr", "dir", "divmod", "enumerate", "eval", "exec", "exit", "filter",
	"format", "getattr", "globals", "hasattr", "hash", "help", "hex", "id",
	"input", "isinstance", "issubclass", "iter", "len", "license", "locals",
	"map", "max", "min", "next", "oct", "open", "ord", "pow", "print",
	"property", "quit", "repr", "reversed", "round", "setattr", "sorted",
	"staticmethod", "sum", "super", "vars", "zip", "__import__",
	"__build_class__", "__debug__",
	// Exceptions.
	"ArithmeticError", "AssertionError", "AttributeError", "BaseException",
	"BaseExceptionGroup", "BlockingIOError", "BrokenPipeError", "BufferError",
	"BytesWarning", "ChildProcessError", "ConnectionAbortedError",
	"ConnectionError", "ConnectionRefusedError", "ConnectionResetError",
	"DeprecationWarning", "EncodingWarning", "EnvironmentError", "EOFError",
	"Exception", "ExceptionGroup", "FileExistsError", "FileNotFoundError",
	"FloatingPointError", "FutureWarning", "GeneratorExit", "ImportError",
	"ImportWarning", "IndentationError", "IndexError", "InterruptedError",
	"IOError", "IsADirectoryError", "KeyboardInterrupt", "KeyError",
	"LookupError", "MemoryError", "ModuleNotFoundError", "NameError",
	"NotADirectoryError", "NotImplementedError", "OSError", "OverflowError",
	"PendingDeprecationWarning", "PermissionError", "ProcessLookupError",
	"PythonFinalizationError", "RecursionError", "ReferenceError",
	"ResourceWarning", "RuntimeError", "RuntimeWarning", "StopAsyncIteration",
	"StopIteration", "SyntaxError", "SyntaxWarning", "SystemError",
	"SystemExit", "TabError", "TimeoutError", "TypeError", "UnboundLocalError",
	"UnicodeDecodeError", "UnicodeEncodeError", "UnicodeError",
	"UnicodeTranslateError", "UnicodeWarning", "UserWarning", "ValueError",
	"Warning", "WindowsError", "ZeroDivisionError",
	// Module attributes.
	"__name__", "__doc__", "__file__", "__spec__", "__loader__",
	"__package__", "__path__", "__builtins__", "__annotations__",
	"__cached__", "__dict__", "__all__",
	// Class body and method implicit names.
	"__module__", "__qualname__", "__class__",
)

func toSet(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}

	return set
}

func isBuiltin(name string) bool {
	_, ok := builtinNames[name]

	return ok
}
