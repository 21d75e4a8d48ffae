// Copyright 2026 The ubitlog Authors. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package ubitlog

// headerBlob is the fixed, opaque byte blob written by Clear at
// flash_start. It is a small self-contained HTML document: a host
// computer that opens the container file sees a table rendering of
// the recorded rows and a "download as CSV" link. Its final bytes are
// the literal marker "<!--FS_START", which opens the HTML comment
// that the metadata/journal/data regions live inside; this is why the
// cleaning rules (see clean in schema.go) forbid "-->" in any persisted value
// or heading — it would close the comment early and leak the raw log
// format to the rendered page.
//
// This blob is immutable, build-time content: implementers must not
// reformat it, since its byte length fixes start_address (see
// ComputeLayout) and its contents are the entire host-side experience
// of opening the container.
const headerBlob = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>ubitlog data</title>
<style>
body { font-family: sans-serif; margin: 1em; }
table { border-collapse: collapse; }
td, th { border: 1px solid #ccc; padding: 2px 6px; font-size: 0.9em; }
#dl { margin-bottom: 1em; display: inline-block; }
</style>
</head>
<body>
<h1>ubitlog data</h1>
<a id="dl" download="data.csv">Download CSV</a>
<table id="t"></table>
<script>
(function () {
  // The raw CSV text lives between the comment markers that wrap the
  // remainder of this file, starting immediately after this script.
  var src = document.documentElement.outerHTML;
  var start = src.indexOf("<!--FS_START") + "<!--FS_START".length;
  var raw = src.slice(start);
  var end = raw.indexOf("-->");
  if (end >= 0) { raw = raw.slice(0, end); }
  // Tombstoned (retired) header runs appear as NUL bytes; treat runs
  // of them as whitespace so only the live heading line renders.
  raw = raw.replace(/` + "\x00" + `+/g, "");
  var lines = raw.split("\n").filter(function (l) { return l.length > 0; });
  var t = document.getElementById("t");
  for (var i = 0; i < lines.length; i++) {
    var tr = document.createElement("tr");
    var cells = lines[i].split(",");
    for (var j = 0; j < cells.length; j++) {
      var cell = document.createElement(i === 0 ? "th" : "td");
      cell.textContent = cells[j];
      tr.appendChild(cell);
    }
    t.appendChild(tr);
  }
  var blob = new Blob([raw], { type: "text/csv" });
  document.getElementById("dl").href = URL.createObjectURL(blob);
})();
</script>
</body>
</html>
<!--FS_START`
